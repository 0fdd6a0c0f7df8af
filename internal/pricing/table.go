package pricing

import (
	"errors"
	"fmt"
)

// Table holds the per-unit provider rates and fixed monthly fees used by the
// cost calculator. All amounts are USD; conversion to the display currency
// happens only at the presentation boundary via Convert.
//
// Invariants:
// - All rates and fees are >= 0.
// - ExchangeRate is > 0.
// - The table is an immutable value: callers pass it in, nothing mutates it.
//   Rate changes require a config change and redeploy.
type Table struct {
	// Per-minute rates applied to AI-handled voice minutes.
	STTPerMinuteUSD       float64 `json:"stt_per_minute_usd"`
	LLMVoicePerMinuteUSD  float64 `json:"llm_voice_per_minute_usd"`
	TelephonyPerMinuteUSD float64 `json:"telephony_per_minute_usd"`
	HostingPerMinuteUSD   float64 `json:"hosting_per_minute_usd"`

	// Metered LLM token rates, per 1000 tokens. These price the raw token
	// spend reported alongside the blended per-minute/per-interaction rates.
	LLMInputPer1KTokensUSD  float64 `json:"llm_input_per_1k_tokens_usd"`
	LLMOutputPer1KTokensUSD float64 `json:"llm_output_per_1k_tokens_usd"`

	// Per-interaction chat rates.
	LLMPerChatUSD     float64 `json:"llm_per_chat_usd"`
	HostingPerChatUSD float64 `json:"hosting_per_chat_usd"`

	// Per-message SMS rates.
	TelephonyPerSMSUSD float64 `json:"telephony_per_sms_usd"`
	LLMPerSMSUSD       float64 `json:"llm_per_sms_usd"`
	HostingPerSMSUSD   float64 `json:"hosting_per_sms_usd"`

	// TTS is billed against its own included-minutes allowance. Below the
	// allowance the marginal cost is zero; the base subscription fee is a
	// fixed monthly cost.
	TTSIncludedMinutes        float64 `json:"tts_included_minutes"`
	TTSOveragePerMinuteUSD    float64 `json:"tts_overage_per_minute_usd"`
	TTSSubscriptionMonthlyUSD float64 `json:"tts_subscription_monthly_usd"`

	// Fixed monthly costs, independent of usage volume.
	PhoneNumberMonthlyUSD float64 `json:"phone_number_monthly_usd"`
	HostingMonthlyUSD     float64 `json:"hosting_monthly_usd"`

	// ExchangeRate converts USD amounts to the display currency.
	ExchangeRate    float64 `json:"exchange_rate"`
	DisplayCurrency string  `json:"display_currency"`
}

// Default returns the current production rates. Overrides come from config;
// nothing reads the environment here.
func Default() Table {
	return Table{
		STTPerMinuteUSD:       0.0077,
		LLMVoicePerMinuteUSD:  0.0150,
		TelephonyPerMinuteUSD: 0.0085,
		HostingPerMinuteUSD:   0.0020,

		LLMInputPer1KTokensUSD:  0.00015,
		LLMOutputPer1KTokensUSD: 0.0006,

		LLMPerChatUSD:     0.0120,
		HostingPerChatUSD: 0.0010,

		TelephonyPerSMSUSD: 0.0079,
		LLMPerSMSUSD:       0.0030,
		HostingPerSMSUSD:   0.0005,

		TTSIncludedMinutes:        100,
		TTSOveragePerMinuteUSD:    0.10,
		TTSSubscriptionMonthlyUSD: 22.00,

		PhoneNumberMonthlyUSD: 1.50,
		HostingMonthlyUSD:     40.00,

		ExchangeRate:    1.55,
		DisplayCurrency: "AUD",
	}
}

// Validate checks the table invariants.
func (t Table) Validate() error {
	rates := map[string]float64{
		"stt_per_minute":         t.STTPerMinuteUSD,
		"llm_voice_per_minute":   t.LLMVoicePerMinuteUSD,
		"telephony_per_minute":   t.TelephonyPerMinuteUSD,
		"hosting_per_minute":     t.HostingPerMinuteUSD,
		"llm_input_per_1k":       t.LLMInputPer1KTokensUSD,
		"llm_output_per_1k":      t.LLMOutputPer1KTokensUSD,
		"llm_per_chat":           t.LLMPerChatUSD,
		"hosting_per_chat":       t.HostingPerChatUSD,
		"telephony_per_sms":      t.TelephonyPerSMSUSD,
		"llm_per_sms":            t.LLMPerSMSUSD,
		"hosting_per_sms":        t.HostingPerSMSUSD,
		"tts_included_minutes":   t.TTSIncludedMinutes,
		"tts_overage_per_minute": t.TTSOveragePerMinuteUSD,
		"tts_subscription_fee":   t.TTSSubscriptionMonthlyUSD,
		"phone_number_monthly":   t.PhoneNumberMonthlyUSD,
		"hosting_monthly":        t.HostingMonthlyUSD,
	}
	for name, v := range rates {
		if v < 0 {
			return fmt.Errorf("pricing: %s must be >= 0, got %v", name, v)
		}
	}
	if t.ExchangeRate <= 0 {
		return errors.New("pricing: exchange_rate must be > 0")
	}
	return nil
}

// Overrides are the startup-time config knobs. Nil means keep the default.
type Overrides struct {
	ExchangeRate       *float64
	DisplayCurrency    string
	TTSIncludedMinutes *float64
	TTSOveragePerMin   *float64
	PhoneNumberMonthly *float64
	HostingMonthly     *float64
}

// Apply returns a copy of the table with overrides applied.
func (t Table) Apply(o Overrides) Table {
	if o.ExchangeRate != nil {
		t.ExchangeRate = *o.ExchangeRate
	}
	if o.DisplayCurrency != "" {
		t.DisplayCurrency = o.DisplayCurrency
	}
	if o.TTSIncludedMinutes != nil {
		t.TTSIncludedMinutes = *o.TTSIncludedMinutes
	}
	if o.TTSOveragePerMin != nil {
		t.TTSOveragePerMinuteUSD = *o.TTSOveragePerMin
	}
	if o.PhoneNumberMonthly != nil {
		t.PhoneNumberMonthlyUSD = *o.PhoneNumberMonthly
	}
	if o.HostingMonthly != nil {
		t.HostingMonthlyUSD = *o.HostingMonthly
	}
	return t
}

// Convert applies the USD to display-currency conversion. It is a pure
// multiplication, applied once at the boundary so intermediate arithmetic
// stays in USD and rounding error does not compound.
func (t Table) Convert(usd float64) float64 {
	return usd * t.ExchangeRate
}
