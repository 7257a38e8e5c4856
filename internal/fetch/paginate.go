package fetch

// Page is one slice of an already fetched collection
type Page[T any] struct {
	Items []T
	// Number is 1-based and clamped to [1, Pages]
	Number int
	Pages  int
	Total  int
}

func (p Page[T]) HasPrev() bool { return p.Number > 1 }
func (p Page[T]) HasNext() bool { return p.Number < p.Pages }

// Paginate returns page number of items, size per page. An empty
// collection has a single empty page.
func Paginate[T any](items []T, size, number int) Page[T] {
	if size <= 0 {
		size = len(items)
		if size == 0 {
			size = 1
		}
	}
	pages := (len(items) + size - 1) / size
	if pages < 1 {
		pages = 1
	}
	number = min(max(number, 1), pages)

	start := (number - 1) * size
	end := min(start+size, len(items))
	return Page[T]{
		Items:  items[start:end],
		Number: number,
		Pages:  pages,
		Total:  len(items),
	}
}
