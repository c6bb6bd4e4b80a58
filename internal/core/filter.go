package core

// europeAllowList is the fixed set of country names treated as Europe.
// Matching is exact and case-sensitive.
var europeAllowList = [...]string{
	"Germany", "United Kingdom", "Croatia", "France",
	"Portugal", "Netherlands", "Cyprus", "Denmark",
	"Spain", "Austria", "Romania", "Italy", "Switzerland",
	"Finland", "Ireland", "Greece", "Luxembourg", "Slovenia",
	"Poland", "Belgium", "Bulgaria", "Sweden", "Norway", "Latvia",
	"Slovakia", "Lithuania", "Georgia",
	"Iceland", "Hungary", "Guernsey", "Andorra", "Malta",
	"Ukraine", "Monaco",
}

var europe = func() map[string]struct{} {
	set := make(map[string]struct{}, len(europeAllowList))
	for _, name := range europeAllowList {
		set[name] = struct{}{}
	}
	return set
}()

// IsEuropean reports whether country is on the allow-list.
func IsEuropean(country string) bool {
	_, ok := europe[country]
	return ok
}

// IsRated reports whether r carries both a rating and a publication year.
func IsRated(r Record) bool {
	return r.BookRating != 0 && r.YearOfPublication != 0
}

// Restrict returns the rows that are rated, dated and European.
func Restrict(t Table) Table {
	return t.Where(func(r Record) bool {
		return IsRated(r) && IsEuropean(r.Country)
	})
}
