package domain

// ReserveOutcome — закрытое множество исходов резервирования стока.
// Корректный ответ склада всегда принимает ровно одну из двух форм;
// третьей, неоднозначной формы не существует.
type ReserveOutcome interface {
	reserveOutcome()
}

// StockReserved — сток успешно зарезервирован под заказ.
type StockReserved struct{}

// StockReservationFailed — склад отказал в резервировании с причиной.
type StockReservationFailed struct {
	Reason string `json:"reason"`
}

func (StockReserved) reserveOutcome()          {}
func (StockReservationFailed) reserveOutcome() {}

// ReleaseOutcome — закрытое множество исходов снятия резерва.
type ReleaseOutcome interface {
	releaseOutcome()
}

// StockReleased — резерв успешно снят.
type StockReleased struct{}

// StockReleaseFailed — склад не смог снять резерв; для компенсации
// такой отказ не фатален.
type StockReleaseFailed struct {
	Reason string `json:"reason"`
}

func (StockReleased) releaseOutcome()      {}
func (StockReleaseFailed) releaseOutcome() {}
