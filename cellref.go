package xltab

// columnIndex decodes the letter prefix of a cell reference like "C7" into a
// 0-based column index: "A"→0, "Z"→25, "AA"→26, "AZ"→51. The second return is
// false when ref starts with no letters at all, in which case the caller
// falls back to the next sequential column.
func columnIndex(ref string) (int, bool) {
	col := 0
	i := 0
	for ; i < len(ref); i++ {
		ch := ref[i]
		if ch >= 'a' && ch <= 'z' {
			ch -= 'a' - 'A'
		}
		if ch < 'A' || ch > 'Z' {
			break
		}
		col = col*26 + int(ch-'A') + 1
	}
	if i == 0 {
		return 0, false
	}
	return col - 1, true
}
