package player

// Patch carries a partial update. Nil fields are left untouched.
type Patch struct {
	Name        *string  `json:"name,omitempty"`
	Position    *string  `json:"position,omitempty"`
	Age         *int     `json:"age,omitempty"`
	Club        *string  `json:"club,omitempty"`
	Nationality *string  `json:"nationality,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	Team        *string  `json:"team,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (u Patch) IsEmpty() bool {
	return u.Name == nil && u.Position == nil && u.Age == nil && u.Club == nil &&
		u.Nationality == nil && u.Rating == nil && u.Team == nil
}

// Apply returns p with the patch fields applied. The identity never changes.
func (u Patch) Apply(p Player) Player {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Position != nil {
		p.Position = *u.Position
	}
	if u.Age != nil {
		p.Age = *u.Age
	}
	if u.Club != nil {
		p.Club = copyString(u.Club)
	}
	if u.Nationality != nil {
		p.Nationality = copyString(u.Nationality)
	}
	if u.Rating != nil {
		r := *u.Rating
		p.Rating = &r
	}
	if u.Team != nil {
		p.Team = copyString(u.Team)
	}
	return p.Normalize()
}

func copyString(s *string) *string {
	v := *s
	return &v
}
