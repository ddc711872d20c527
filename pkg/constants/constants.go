package constants

type contextKey int

const (
	AppKey contextKey = iota
	PoolKey
	TxKey
	LoggerKey
	ParamsKey
)
