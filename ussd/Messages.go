package ussd

import "github.com/nicksnyder/go-i18n/v2/i18n"

// Prompt catalog. The Other texts are the defaults; the toml files under
// locales/ override them per language.
var (
	msgWelcome = &i18n.Message{
		ID:    "bill_welcome",
		Other: "Welcome to BillSplit.\nEnter the total bill amount:",
	}
	msgInvalidAmount = &i18n.Message{
		ID:    "bill_invalid_amount",
		Other: "Invalid amount. Enter a number greater than zero:",
	}
	msgMembersPrompt = &i18n.Message{
		ID:    "bill_members_prompt",
		Other: "Enter the phone numbers of the participants, separated by commas:",
	}
	msgNoValidNumbers = &i18n.Message{
		ID:    "bill_no_valid_numbers",
		Other: "No valid phone numbers found. Enter the numbers again, separated by commas:",
	}
	msgConfirmSummary = &i18n.Message{
		ID:    "bill_confirm_summary",
		Other: "Total: {{.Amount}}\nMembers: {{.Count}}\nEach pays: {{.Share}}\n{{.Numbers}}\n1. Confirm\n2. Cancel",
	}
	msgCreateSuccess = &i18n.Message{
		ID:    "bill_create_success",
		Other: "Bill {{.BillId}} created. Each member pays {{.Share}}. Members will receive an SMS shortly.",
	}
	msgCreateFailed = &i18n.Message{
		ID:    "bill_create_failed",
		Other: "Sorry, we could not create your bill. Please try again later.",
	}
	msgCancelled = &i18n.Message{
		ID:    "bill_cancelled",
		Other: "Bill cancelled. Dial again to start over.",
	}
	msgInvalidOption = &i18n.Message{
		ID:    "bill_invalid_option",
		Other: "Invalid option. Reply 1 to confirm or 2 to cancel.",
	}
	msgSystemError = &i18n.Message{
		ID:    "system_error",
		Other: "System error. Please try again later.",
	}
)

func (e *Engine) localize(message *i18n.Message, templateData map[string]interface{}) string {
	msg, err := e.localizer.Localize(&i18n.LocalizeConfig{
		DefaultMessage: message,
		TemplateData:   templateData,
	})
	if err != nil {
		return message.Other
	}
	return msg
}
