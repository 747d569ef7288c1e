package generator

// Config drives the synthetic ledger generator.
type Config struct {
	NumAccounts     int
	NumTransactions int
	CycleRings      int
	FanInBursts     int
	FanOutBursts    int
	ShellChains     int
	MerchantDecoys  int
	PayrollDecoys   int
	Seed            int64
}

// DefaultConfig returns baseline settings that produce a ledger with a
// realistic mix of noise, injected fraud patterns and legitimate decoys.
func DefaultConfig() Config {
	return Config{
		NumAccounts:     2000,
		NumTransactions: 20000,
		CycleRings:      3,
		FanInBursts:     2,
		FanOutBursts:    2,
		ShellChains:     2,
		MerchantDecoys:  3,
		PayrollDecoys:   3,
		Seed:            42,
	}
}
