package usage

import "time"

// Record is one conversation/interaction as logged by the conversation
// system. Records are read-only to this service: they are never mutated or
// deleted here.
//
// Multi-tenant invariant: OrgID is required; records without it cannot be
// attributed and are skipped during aggregation.
type Record struct {
	ID    string `json:"id" db:"id"`
	OrgID string `json:"org_id" db:"org_id"`

	// Channel may be empty on older rows; empty means voice.
	Channel Channel `json:"channel,omitempty" db:"channel"`

	// DurationSeconds is the total call duration (voice only).
	DurationSeconds int `json:"duration_seconds" db:"duration_seconds"`

	// PostTransferSeconds is the portion of the call after escalation to a
	// human agent. Always <= DurationSeconds.
	PostTransferSeconds int `json:"post_transfer_seconds" db:"post_transfer_seconds"`

	InputTokens  int `json:"input_tokens" db:"input_tokens"`
	OutputTokens int `json:"output_tokens" db:"output_tokens"`

	// TTSSeconds is the synthesized-speech time consumed by this interaction.
	TTSSeconds int `json:"tts_seconds" db:"tts_seconds"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// EffectiveChannel applies the ingestion-boundary default: older rows were
// written before the channel column existed and are all voice calls.
func (r Record) EffectiveChannel() Channel {
	if r.Channel == "" {
		return ChannelVoice
	}
	return r.Channel
}

type Channel string

const (
	ChannelVoice Channel = "voice"
	ChannelChat  Channel = "chat"
	ChannelSMS   Channel = "sms"
)

// MaxVoiceSeconds is the sanity ceiling for a single call. Durations above it
// (or <= 0) are treated as corrupt and the record is excluded from totals.
const MaxVoiceSeconds = 3600

// Totals is the derived per-organization usage for one period. Recomputed
// fully on each query; never persisted.
type Totals struct {
	OrgID string `json:"org_id"`

	// AIMinutes is voice time handled by the assistant; PostTransferMinutes
	// is voice time after escalation to a human.
	AIMinutes           float64 `json:"ai_minutes"`
	PostTransferMinutes float64 `json:"post_transfer_minutes"`

	ChatCount int `json:"chat_count"`
	SMSCount  int `json:"sms_count"`

	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`

	TTSMinutes float64 `json:"tts_minutes"`

	// PhoneNumbers reflects current assistant phone-number assignment,
	// not the queried time window.
	PhoneNumbers int `json:"phone_numbers"`

	// SkippedRecords counts rows excluded for missing org id or corrupt
	// voice durations. Diagnostic only; not a user-facing error.
	SkippedRecords int `json:"skipped_records"`
}
