package usecase

import "github.com/xavierca1/ls-leads/internal/entity"

var urgencyBonus = map[entity.Urgency]int{
	entity.UrgencyImediata: 20,
	entity.UrgencyAlta:     15,
	entity.UrgencyMedia:    10,
	entity.UrgencyBaixa:    5,
}

// ComputeLeadScore soma completude, fit e urgência, limitado a 100.
func ComputeLeadScore(l *entity.Lead, c *entity.Company, ct *entity.Contact) int {
	score := 0

	if ct != nil {
		if ct.Phone != nil {
			score += 10
		}
		if ct.Email != nil {
			score += 5
		}
	}
	if c != nil {
		if c.Segment != nil {
			score += 8
			if *c.Segment != "outro" {
				score += 20
			}
		}
		if c.Size != nil {
			score += 5
			if s := entity.CompanySize(*c.Size); s == entity.SizeMedia || s == entity.SizeGrande {
				score += 15
			}
		}
		if c.Consentimento {
			score += 5
		}
	}
	if l.Necessity != nil {
		score += 7
	}
	if l.Urgency != nil {
		score += 5
		score += urgencyBonus[*l.Urgency]
	}

	if score > 100 {
		return 100
	}
	return score
}
