package ledger

// Option configures a Ledger.
type Option func(*config)

type config struct {
	startCoins  int64
	dailyReward int64
	retries     int
	onConflict  func()
}

func defaultConfig() config {
	return config{
		startCoins:  1000,
		dailyReward: 100,
		retries:     5,
	}
}

// WithStartCoins sets the balance of a fresh account.
func WithStartCoins(n int64) Option {
	return func(c *config) { c.startCoins = n }
}

// WithDailyReward sets the amount granted by ClaimDaily.
func WithDailyReward(n int64) Option {
	return func(c *config) { c.dailyReward = n }
}

// WithRetries bounds compare-and-swap retries per mutation.
func WithRetries(n int) Option {
	return func(c *config) { c.retries = n }
}

// WithConflictHook is called every time a write loses a version race.
func WithConflictHook(fn func()) Option {
	return func(c *config) { c.onConflict = fn }
}
