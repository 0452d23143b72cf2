package pos

// CashRegister identifies the physical till. Registers are created and
// maintained by the back office; the till only selects and caches one.
type CashRegister struct {
	ID       string
	Name     string
	Location string
}
