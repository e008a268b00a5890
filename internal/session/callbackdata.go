package session

import (
	"fmt"
	"strconv"
	"strings"
)

// SplitParams strips prefix from token and splits the remainder on '_' into
// exactly n fields.
func SplitParams(token, prefix string, n int) ([]string, error) {
	rest, ok := strings.CutPrefix(token, prefix)
	if !ok {
		return nil, tokenErr(token, "missing prefix "+prefix, nil)
	}
	parts := strings.Split(rest, "_")
	if len(parts) != n {
		return nil, tokenErr(token, fmt.Sprintf("want %d params, got %d", n, len(parts)), nil)
	}
	return parts, nil
}

// SplitParamsTail is SplitParams where the last field takes the rest of the
// token, underscores included. Opaque trailing tokens (a back action) survive it.
func SplitParamsTail(token, prefix string, n int) ([]string, error) {
	rest, ok := strings.CutPrefix(token, prefix)
	if !ok {
		return nil, tokenErr(token, "missing prefix "+prefix, nil)
	}
	parts := strings.SplitN(rest, "_", n)
	if len(parts) != n {
		return nil, tokenErr(token, fmt.Sprintf("want %d params, got %d", n, len(parts)), nil)
	}
	return parts, nil
}

// IntParam parses a single non-negative integer suffix such as sub_list_page_<n>.
func IntParam(token, prefix string) (int, error) {
	parts, err := SplitParams(token, prefix, 1)
	if err != nil {
		return 0, err
	}
	n, err := parseNonNegative(parts[0], 31)
	if err != nil {
		return 0, tokenErr(token, "integer param", err)
	}
	return int(n), nil
}

// IDPageParams parses the <id>_<page> suffix shared by the record callbacks.
func IDPageParams(token, prefix string) (id int64, page int, err error) {
	parts, err := SplitParams(token, prefix, 2)
	if err != nil {
		return 0, 0, err
	}
	id, err = parseNonNegative(parts[0], 63)
	if err != nil || id == 0 {
		return 0, 0, tokenErr(token, "record id", err)
	}
	p, err := parseNonNegative(parts[1], 31)
	if err != nil {
		return 0, 0, tokenErr(token, "page", err)
	}
	return id, int(p), nil
}

// IDPage builds <prefix><id>_<page>.
func IDPage(prefix string, id int64, page int) string {
	return prefix + strconv.FormatInt(id, 10) + "_" + strconv.Itoa(page)
}
