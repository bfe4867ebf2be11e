package mail

// AssignmentEmailData alimenta o template do aviso de atribuição.
type AssignmentEmailData struct {
	ResponsavelName string
	CompanyName     string
	AssignedByName  string
	Notes           string
	AssignedAt      string
	LeadURL         string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	// BaseURL monta o link para o lead no front; vazio omite o link.
	BaseURL string
	Dialer  Dialer
}
