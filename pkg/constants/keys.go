package constants

type ContextKey string

const (
	TxKey        ContextKey = "tx"
	PoolKey      ContextKey = "pool"
	LoggerKey    ContextKey = "logger"
	ParamsKey    ContextKey = "params"
	PrincipalKey ContextKey = "principal"
	RequestStart ContextKey = "requestStart"
	LocalizerKey ContextKey = "localizer"
	LocaleKey    ContextKey = "locale"
)
