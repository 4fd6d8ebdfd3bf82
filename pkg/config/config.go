package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App      AppConfig
	HTTP     HTTPConfig
	Log      LogConfig
	Template TemplateConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogConfig nivel del logger (trace, debug, info, warn, error).
type LogConfig struct {
	Level string
}

// TemplateConfig plantilla por defecto y límite de subida de archivos.
type TemplateConfig struct {
	Path           string // CONTRACT_TEMPLATE_PATH, plantilla .docx empaquetada
	MaxUploadBytes int64  // UPLOAD_MAX_BYTES, aplica a plantillas y hojas de cálculo
}

// DefaultMaxUploadBytes 10 MiB.
const DefaultMaxUploadBytes int64 = 10 << 20

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, HTTP_PORT, CONTRACT_TEMPLATE_PATH, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath("./config")
	_ = v.MergeInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	port, err := getInt(v, "HTTP_PORT", 8080)
	if err != nil {
		return nil, err
	}
	maxUpload, err := getInt64(v, "UPLOAD_MAX_BYTES", DefaultMaxUploadBytes)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Env:  getString(v, "APP_ENV", "development"),
			Name: getString(v, "APP_NAME", "contratos-api"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: port,
		},
		Log: LogConfig{
			Level: getString(v, "LOG_LEVEL", "info"),
		},
		Template: TemplateConfig{
			Path:           getString(v, "CONTRACT_TEMPLATE_PATH", "template_contract.docx"),
			MaxUploadBytes: maxUpload,
		},
	}
	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) (int, error) {
	n, err := getInt64(v, key, int64(def))
	return int(n), err
}

func getInt64(v *viper.Viper, key string, def int64) (int64, error) {
	if !v.IsSet(key) {
		return def, nil
	}
	switch val := v.Get(key).(type) {
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("config: %s=%q no es un entero", key, val)
		}
		return n, nil
	default:
		return v.GetInt64(key), nil
	}
}
