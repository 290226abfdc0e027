package lang

// Page is a run of whole sentences sized to a token budget.
type Page []Token

// PageSizes holds the token budget of each page series.
type PageSizes struct {
	Small  int `yaml:"small"`
	Medium int `yaml:"medium"`
	Large  int `yaml:"large"`
}

// DefaultPageSizes are the budgets used when none are configured.
var DefaultPageSizes = PageSizes{Small: 100, Medium: 150, Large: 200}

// PageSet holds three independently paginated series of the same text.
type PageSet struct {
	Small  []Page
	Medium []Page
	Large  []Page
}

// Paginate builds the three page series from sentence groups.
func Paginate(groups [][]Token, sizes PageSizes) PageSet {
	return PageSet{
		Small:  PaginateSeries(groups, sizes.Small),
		Medium: PaginateSeries(groups, sizes.Medium),
		Large:  PaginateSeries(groups, sizes.Large),
	}
}

// PaginateSeries fills pages with whole sentences. After each sentence the
// budget shrinks by its token count and the page closes once the budget is
// spent, so a page may overshoot but never splits a sentence.
func PaginateSeries(groups [][]Token, budget int) []Page {
	if len(groups) == 0 {
		return nil
	}
	pages := []Page{{}}
	remaining := budget
	for _, sentence := range groups {
		cur := len(pages) - 1
		pages[cur] = append(pages[cur], sentence...)
		remaining -= len(sentence)
		if remaining <= 0 {
			pages = append(pages, Page{})
			remaining = budget
		}
	}
	if len(pages[len(pages)-1]) == 0 {
		pages = pages[:len(pages)-1]
	}
	return pages
}

// PageTexts returns each page as its token strings.
func PageTexts(pages []Page) [][]string {
	out := make([][]string, len(pages))
	for i, p := range pages {
		out[i] = Texts(p)
	}
	return out
}
