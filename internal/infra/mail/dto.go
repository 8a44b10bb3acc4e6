package mail

type PartialConversionEmailData struct {
	LeadID      string
	LeadName    string
	LeadEmail   string
	Value       string
	ConvertedAt string
	Cause       string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string

	dialer dialer
}
