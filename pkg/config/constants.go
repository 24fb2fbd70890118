package config

// EnvPrefix is intentionally empty: every field carries a fully qualified
// QROBOTICS_* envconfig tag.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "QROBOTICS_DB_DSN"
	EnvDBHost = "QROBOTICS_DB_HOST"
	EnvDBUser = "QROBOTICS_DB_USER"
	EnvDBName = "QROBOTICS_DB_NAME"
)

var componentDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
