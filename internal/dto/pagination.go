package dto

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Page is the limit/offset pair shared by list filters
type Page struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// SetDefaults sets default values for pagination
func (p *Page) SetDefaults() {
	if p.Limit <= 0 || p.Limit > MaxLimit {
		p.Limit = DefaultLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}
