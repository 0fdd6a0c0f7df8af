package pricing

import "assistant-platform/internal/usage"

// Breakdown is the internal service cost for one organization over one
// billing period, in USD. Fixed costs apply once per period regardless of
// volume; with zero usage the total equals the fixed costs, not zero.
type Breakdown struct {
	OrgID string `json:"org_id"`

	// Variable costs.
	VoiceUSD        float64 `json:"voice_usd"`
	PostTransferUSD float64 `json:"post_transfer_usd"`
	ChatUSD         float64 `json:"chat_usd"`
	SMSUSD          float64 `json:"sms_usd"`
	TTSOverageUSD   float64 `json:"tts_overage_usd"`

	// Metered LLM token spend at the per-1k rates. Informational: the blended
	// per-minute and per-interaction rates above already carry LLM cost, so
	// this line is not added into TotalUSD.
	LLMTokenUSD float64 `json:"llm_token_usd"`

	// Fixed costs.
	PhoneNumbersUSD    float64 `json:"phone_numbers_usd"`
	HostingFixedUSD    float64 `json:"hosting_fixed_usd"`
	TTSSubscriptionUSD float64 `json:"tts_subscription_usd"`

	VariableUSD float64 `json:"variable_usd"`
	FixedUSD    float64 `json:"fixed_usd"`
	TotalUSD    float64 `json:"total_usd"`
}

// Calculate converts aggregated usage into internal cost using the table.
// Pure function: identical input yields identical output.
func Calculate(t Table, u usage.Totals) Breakdown {
	b := Breakdown{OrgID: u.OrgID}

	// AI-handled minutes carry the full service stack; post-transfer minutes
	// are human-handled and bill only telephony.
	perAIMinute := t.STTPerMinuteUSD + t.LLMVoicePerMinuteUSD + t.TelephonyPerMinuteUSD + t.HostingPerMinuteUSD
	b.VoiceUSD = u.AIMinutes * perAIMinute
	b.PostTransferUSD = u.PostTransferMinutes * t.TelephonyPerMinuteUSD

	b.ChatUSD = float64(u.ChatCount) * (t.LLMPerChatUSD + t.HostingPerChatUSD)
	b.SMSUSD = float64(u.SMSCount) * (t.TelephonyPerSMSUSD + t.LLMPerSMSUSD + t.HostingPerSMSUSD)

	b.TTSOverageUSD = ttsOverage(t, u.TTSMinutes)

	b.LLMTokenUSD = float64(u.InputTokens)/1000*t.LLMInputPer1KTokensUSD +
		float64(u.OutputTokens)/1000*t.LLMOutputPer1KTokensUSD

	b.PhoneNumbersUSD = float64(u.PhoneNumbers) * t.PhoneNumberMonthlyUSD
	b.HostingFixedUSD = t.HostingMonthlyUSD
	b.TTSSubscriptionUSD = t.TTSSubscriptionMonthlyUSD

	b.VariableUSD = b.VoiceUSD + b.PostTransferUSD + b.ChatUSD + b.SMSUSD + b.TTSOverageUSD
	b.FixedUSD = b.PhoneNumbersUSD + b.HostingFixedUSD + b.TTSSubscriptionUSD
	b.TotalUSD = b.VariableUSD + b.FixedUSD
	return b
}

// ttsOverage charges only minutes beyond the included allowance. Below the
// allowance the marginal cost is zero; the base fee lives in fixed costs.
func ttsOverage(t Table, ttsMinutes float64) float64 {
	over := ttsMinutes - t.TTSIncludedMinutes
	if over <= 0 {
		return 0
	}
	return over * t.TTSOveragePerMinuteUSD
}

// FullyLoadedPerAIMinute is (variable + fixed) / AI-handled minutes.
// Returns 0 when there are no AI minutes.
func FullyLoadedPerAIMinute(b Breakdown, aiMinutes float64) float64 {
	if aiMinutes <= 0 {
		return 0
	}
	return b.TotalUSD / aiMinutes
}
