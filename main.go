package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"github.com/BurntSushi/toml"

	"github.com/meetsik24/Split-Bill-Platform-Backend/bill"
	"github.com/meetsik24/Split-Bill-Platform-Backend/config"
	"github.com/meetsik24/Split-Bill-Platform-Backend/controller"
	"github.com/meetsik24/Split-Bill-Platform-Backend/notifier"
	"github.com/meetsik24/Split-Bill-Platform-Backend/routes"
	"github.com/meetsik24/Split-Bill-Platform-Backend/session"
	"github.com/meetsik24/Split-Bill-Platform-Backend/ussd"
	"github.com/meetsik24/Split-Bill-Platform-Backend/utils"
)

func main() {
	fmt.Println("Hello - billsplit-service: 9000")
	utils.InitializeViper("config", "yml")

	// Validate SMS gateway configuration before anything depends on it
	gatewayUrl := viper.GetString("sms_gateway_url")
	if gatewayUrl == "" {
		panic("sms_gateway_url is not configured in config.yml. Please set sms_gateway_url (e.g., http://localhost:8383/api/v1/sms)")
	}
	if !strings.HasPrefix(gatewayUrl, "http://") && !strings.HasPrefix(gatewayUrl, "https://") {
		panic(fmt.Sprintf("ERROR: Invalid sms_gateway_url format: '%s'. Must start with http:// or https://", gatewayUrl))
	}
	fmt.Printf("SMS gateway configured: %s\n", gatewayUrl)

	config.InitializeConfig()
	config.ConnectDb()
	defer config.DB.Close()
	config.MigrateDb()

	sessionTTL := viper.GetDuration("session_ttl")
	if sessionTTL == 0 {
		sessionTTL = 2 * time.Minute
	}
	var sessions session.Store
	if viper.GetString("session_store") == "redis" {
		sessions = session.NewRedisStore(config.Redis, sessionTTL)
	} else {
		memory := session.NewMemoryStore(sessionTTL)
		memory.StartSweeper(context.Background(), time.Minute)
		sessions = memory
	}

	sms := notifier.NewSMSClient(config.DB)
	bills := bill.NewStore(config.DB, sms)
	engine := ussd.NewEngine(sessions, bills, loadLocalizer())

	ussdCtl := &controller.USSDController{Engine: engine, Sessions: sessions}
	billCtl := &controller.BillController{Bills: bills}

	server := routes.InitRoutes(ussdCtl, billCtl)
	port := viper.GetInt("port")
	if port == 0 {
		port = 9000
	}
	if err := server.Listen(fmt.Sprintf("0.0.0.0:%d", port)); err != nil {
		panic(fmt.Sprintf("server listen failed: %v", err))
	}
}

// loadLocalizer builds the prompt localizer. Missing catalog files are not
// fatal: every prompt carries a default text.
func loadLocalizer() *i18n.Localizer {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	localesPath := viper.GetString("locales_path")
	if localesPath == "" {
		localesPath = "locales"
	}
	for _, file := range []string{"billsplit.en.toml", "billsplit.sw.toml"} {
		if _, err := bundle.LoadMessageFile(localesPath + "/" + file); err != nil {
			fmt.Println("Error loading translations:", err)
		}
	}
	defaultLanguage := viper.GetString("default_language")
	if defaultLanguage == "" {
		defaultLanguage = "en"
	}
	return i18n.NewLocalizer(bundle, defaultLanguage, "en")
}
