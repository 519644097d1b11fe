package password

// keyboard is the substitution table. Rows are indexed top to bottom.
var keyboard = [...][10]rune{
	{'1', '2', '3', '4', '5', '6', '7', '8', '9', '0'},
	{'q', 'w', 'e', 'r', 't', 'y', 'u', 'i', 'o', 'p'},
	{'a', 's', 'd', 'f', 'g', 'h', 'j', 'k', 'l', ':'},
	{'z', 'x', 'c', 'v', 'b', 'n', 'm', ',', '.', '/'},
}

const rowCount = len(keyboard)

// locate returns the keyboard row and column holding r.
func locate(r rune) (row, col int, ok bool) {
	for row := range keyboard {
		for col, k := range keyboard[row] {
			if k == r {
				return row, col, true
			}
		}
	}
	return 0, 0, false
}
