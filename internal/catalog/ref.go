package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// TrailingID extracts the integer identity from the last non-empty path
// segment of a resource reference such as
// "https://pokeapi.co/api/v2/pokemon-species/25/".
func TrailingID(ref string) (int, error) {
	trimmed := strings.TrimRight(ref, "/")
	if trimmed == "" {
		return 0, fmt.Errorf("catalog: empty resource reference")
	}
	seg := trimmed[strings.LastIndex(trimmed, "/")+1:]
	id, err := strconv.Atoi(seg)
	if err != nil {
		return 0, fmt.Errorf("catalog: no numeric id in %q", ref)
	}
	return id, nil
}
