package config

import (
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/viper"
)

var Redis *redis.Client
var ServiceName string = "billsplit-service"

func InitializeConfig() {
	Redis = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", viper.GetString("redis.host"), viper.GetString("redis.port")),
		Password: viper.GetString("redis.password"),
		DB:       viper.GetInt("redis.database"),
	})
}

// IsDevMode gates the diagnostic session endpoints; they must never be
// reachable in a production configuration.
func IsDevMode() bool {
	return strings.ToLower(viper.GetString("mode")) == "development"
}
