package utils

import (
	"fmt"
	"log"
	mathRand "math/rand"
	"strings"
	"time"
	"unsafe"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var IsTestMode bool = false
var zapLogger *zap.Logger

const letterBytes = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
const (
	letterIdxBits = 6                    // 6 bits to represent a letter index
	letterIdxMask = 1<<letterIdxBits - 1 // All 1-bits, as many as letterIdxBits
	letterIdxMax  = 63 / letterIdxBits   // # of letter indices fitting in 63 bits
)

// Define the LogLevel type as a string
type LogLevel string

const (
	INFO     LogLevel = "INFO"
	DEBUG    LogLevel = "DEBUG"
	ERROR    LogLevel = "ERROR"
	CRITICAL LogLevel = "CRITICAL"
)

type Logger struct {
	LogLevel    LogLevel
	Message     string
	ServiceName string
}

func RandString(n int) string {
	var src = mathRand.NewSource(time.Now().UnixNano())
	b := make([]byte, n)
	for i, cache, remain := n-1, src.Int63(), letterIdxMax; i >= 0; {
		if remain == 0 {
			cache, remain = src.Int63(), letterIdxMax
		}
		if idx := int(cache & letterIdxMask); idx < len(letterBytes) {
			b[i] = letterBytes[idx]
			i--
		}
		cache >>= letterIdxBits
		remain--
	}

	return *(*string)(unsafe.Pointer(&b))
}

// preventing application from crashing abruptly. use defer PanicRecover() on top of the codes that may cause panic
func PanicRecover() {
	if r := recover(); r != nil {
		log.Println("Recovered from panic: ", r)
	}
}

func InitializeViper(configName string, configType string) {
	viper.SetConfigName(configName)
	if IsTestMode {
		fmt.Println("Running in Test mode...")
		viper.AddConfigPath("../") // Adjust the path for test environment
	} else {
		viper.AddConfigPath("/app")
		viper.AddConfigPath(".")
	}
	viper.AutomaticEnv()
	viper.SetConfigType(configType)
	// Map the environment variable POSTGRES_DB_PASSWORD to the config path postgres_db.password
	viper.BindEnv("postgres_db.password", "POSTGRES_DB_PASSWORD")
	if viper.AllKeys() == nil {
		if err := viper.ReadInConfig(); err != nil {
			log.Fatal("Error reading config file, ", err)
		}
	} else {
		if err := viper.MergeInConfig(); err != nil {
			log.Fatalf("Error reading config file 2, %s", err)
		}
	}
}

func LogMessage(logLevel string, message string, service string, forcedTraceId ...string) string {
	if zapLogger == nil {
		mode := strings.ToLower(viper.GetString("mode"))
		var err error
		if IsTestMode || mode == "development" {
			zapLogger, err = zap.NewDevelopment()
		} else {
			zapLogger, err = zap.NewProduction()
		}
		if err != nil {
			log.Printf("zap init failed: %v", err)
			zapLogger = zap.NewNop()
		}
	}
	traceId := RandString(12)
	if forcedTraceId != nil && forcedTraceId[0] != "" {
		traceId = forcedTraceId[0]
	}
	fields := []zap.Field{
		zap.String("service", service),
		zap.String("traceId", traceId),
	}
	switch strings.ToLower(logLevel) {
	case "critical", "fatal", "panic":
		zapLogger.Error(message, fields...)
	case "error":
		zapLogger.Error(message, fields...)
	case "warn", "warning":
		zapLogger.Warn(message, fields...)
	case "info":
		zapLogger.Info(message, fields...)
	case "debug":
		zapLogger.Debug(message, fields...)
	default:
		zapLogger.Info(message, fields...)
	}
	return traceId
}

// USSDResponse writes one dialogue turn back to the gateway. status is
// "CON" while the dialogue expects another turn, "END" when it is finished.
func USSDResponse(c *fiber.Ctx, sessionId string, serviceCode string, status string, message string) error {
	return c.JSON(fiber.Map{
		"sessionId":   sessionId,
		"serviceCode": serviceCode,
		"message":     message,
		"status":      status,
	})
}

// return json response and save logs if logger contains 1 or more data
func JsonErrorResponse(c *fiber.Ctx, responseStatus int, message string, logger ...Logger) error {
	c.SendStatus(responseStatus)
	traceId := ""
	for _, entry := range logger {
		logId := ""
		if !IsTestMode {
			logId = LogMessage(string(entry.LogLevel), entry.Message, entry.ServiceName, traceId)
		} else {
			fmt.Println(entry.Message)
		}
		if traceId == "" {
			traceId = logId
		}
	}
	publicMessage := message
	// never expose the underlying system error on 5xx responses
	if responseStatus >= 500 {
		if len(message) < 3 {
			publicMessage = "Our apologies, something went wrong. Please try again in a little while. Trace_id: " + traceId
		} else {
			publicMessage = fmt.Sprintf("%s, Sorry for the inconvenience! Please give it another go in a bit. Trace_id: %s", message, traceId)
		}
	}
	return c.JSON(fiber.Map{
		"status":  responseStatus,
		"message": publicMessage,
	})
}
