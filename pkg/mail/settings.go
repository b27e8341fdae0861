package mail

// Encryption selects the SMTP transport security mode.
type Encryption string

const (
	EncryptionNone Encryption = "none"
	EncryptionSSL  Encryption = "ssl"
	EncryptionTLS  Encryption = "tls"
)

// Account is one named SMTP sending identity. Email is the lookup key;
// uniqueness across accounts is not enforced and the first listed match wins.
type Account struct {
	Email       string `yaml:"email"`
	DisplayName string `yaml:"displayName"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
}

// SMTPSettings configures the relay and its sending accounts. The engine
// treats the account list as immutable input per call; it is edited only
// through the external settings document.
type SMTPSettings struct {
	Enabled             bool       `yaml:"enabled"`
	Host                string     `yaml:"host"`
	Port                int        `yaml:"port"`
	Encryption          Encryption `yaml:"encryption"`
	AuthRequired        bool       `yaml:"authRequired"`
	InsecureSkipVerify  bool       `yaml:"insecureSkipVerify"`
	Accounts            []Account  `yaml:"accounts"`
	DefaultAccountEmail string     `yaml:"defaultAccount"`

	// RetryCount and RetryBackoffMs bound the in-process send retry loop.
	RetryCount     int `yaml:"retryCount"`
	RetryBackoffMs int `yaml:"retryBackoffMs"`
}

// Configured reports whether the relay is usable at all: enabled with a host.
func (s SMTPSettings) Configured() bool {
	return s.Enabled && s.Host != ""
}
