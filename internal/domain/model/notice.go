package model

// IssuanceNotice is the payload published on the notification bus when a
// certificate is issued.
type IssuanceNotice struct {
	CertificateURL string `json:"certificateURL"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	Locale         string `json:"locale"`
}
