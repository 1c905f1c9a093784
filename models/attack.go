package models

// AttackType identifies one of the ten simulated attack categories a ship can
// carry. Values are stable and stored as-is in the database and on the wire.
type AttackType string

const (
	AttackSQLInjection     AttackType = "sql_injection"
	AttackXSS              AttackType = "xss"
	AttackPortScan         AttackType = "port_scan"
	AttackBruteForce       AttackType = "brute_force"
	AttackPhishing         AttackType = "phishing"
	AttackDDoS             AttackType = "ddos"
	AttackMITM             AttackType = "mitm"
	AttackCommandInjection AttackType = "command_injection"
	AttackRansomware       AttackType = "ransomware"
	AttackSessionHijacking AttackType = "session_hijacking"
)

// AllAttackTypes is the canonical ordering used for cyclic assignment during
// ship placement. Do not reorder: grids persisted by older runs depend on it
// only through the stored ships, but the even-distribution guarantee
// (num_ships / 10 per type) assumes exactly these ten entries.
var AllAttackTypes = []AttackType{
	AttackSQLInjection,
	AttackXSS,
	AttackPortScan,
	AttackBruteForce,
	AttackPhishing,
	AttackDDoS,
	AttackMITM,
	AttackCommandInjection,
	AttackRansomware,
	AttackSessionHijacking,
}

func IsValidAttackType(t AttackType) bool {
	for _, a := range AllAttackTypes {
		if a == t {
			return true
		}
	}
	return false
}

// AttackTypeInfo is the display metadata served to clients for the glossary.
type AttackTypeInfo struct {
	ID         AttackType `json:"id"`
	Name       string     `json:"name"`
	Difficulty string     `json:"difficulty"`
}

var AttackCatalog = map[AttackType]AttackTypeInfo{
	AttackSQLInjection:     {ID: AttackSQLInjection, Name: "SQL Injection", Difficulty: "easy"},
	AttackXSS:              {ID: AttackXSS, Name: "Cross-Site Scripting (XSS)", Difficulty: "medium"},
	AttackPortScan:         {ID: AttackPortScan, Name: "Port Scanning", Difficulty: "easy"},
	AttackBruteForce:       {ID: AttackBruteForce, Name: "Brute Force Attack", Difficulty: "easy"},
	AttackPhishing:         {ID: AttackPhishing, Name: "Phishing / Social Engineering", Difficulty: "medium"},
	AttackDDoS:             {ID: AttackDDoS, Name: "DDoS Attack", Difficulty: "medium"},
	AttackMITM:             {ID: AttackMITM, Name: "Man-in-the-Middle (MITM)", Difficulty: "hard"},
	AttackCommandInjection: {ID: AttackCommandInjection, Name: "Command Injection", Difficulty: "hard"},
	AttackRansomware:       {ID: AttackRansomware, Name: "Ransomware", Difficulty: "hard"},
	AttackSessionHijacking: {ID: AttackSessionHijacking, Name: "Session Hijacking", Difficulty: "medium"},
}
