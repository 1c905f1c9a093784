package models

// TrafficCategory is the log subsystem a synthetic message pretends to come
// from.
type TrafficCategory string

const (
	CategoryHTTP     TrafficCategory = "HTTP"
	CategoryDatabase TrafficCategory = "DATABASE"
	CategoryFirewall TrafficCategory = "FIREWALL"
	CategoryAuth     TrafficCategory = "AUTH"
	CategoryEmail    TrafficCategory = "EMAIL"
	CategorySystem   TrafficCategory = "SYSTEM"
)

type TrafficSeverity string

const (
	SeverityInfo  TrafficSeverity = "INFO"
	SeverityWarn  TrafficSeverity = "WARN"
	SeverityError TrafficSeverity = "ERROR"
	SeverityAlert TrafficSeverity = "ALERT"
)

// TrafficMessage is one synthetic log line broadcast to a team. For leaks in
// the final difficulty phase AttackType and EncodingType are deliberately left
// empty so they are dropped from the JSON payload; clients must not be able to
// tell a late-game leak's cipher from the message envelope.
type TrafficMessage struct {
	Timestamp    string          `json:"timestamp"`
	Severity     TrafficSeverity `json:"severity"`
	Category     TrafficCategory `json:"category"`
	SourceIP     string          `json:"source_ip,omitempty"`
	Message      string          `json:"message"`
	ContainsClue bool            `json:"contains_clue"`
	AttackType   AttackType      `json:"attack_type,omitempty"`
	EncodedData  string          `json:"encoded_data,omitempty"`
	EncodingType string          `json:"encoding_type,omitempty"`
}
