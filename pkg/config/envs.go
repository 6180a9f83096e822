package config

// EnvPrefix is the envconfig prefix; individual fields carry explicit
// CAREOPS_* names so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "CAREOPS_DB_DSN"
	EnvDBHost = "CAREOPS_DB_HOST"
	EnvDBUser = "CAREOPS_DB_USER"
	EnvDBName = "CAREOPS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
