package chessapi

// Ratings per time control as reported by a chess site.
// A nil field means the site did not report a rating for that control
type Ratings struct {
	Bullet  *int
	Blitz   *int
	Rapid   *int
	Classic *int
}

// Known reports whether at least one time control has a rating
func (r Ratings) Known() bool {
	return r.Bullet != nil || r.Blitz != nil || r.Rapid != nil || r.Classic != nil
}
