package toolchain

import "fmt"

// SplitArgs tokenizes a shell-style argument string: whitespace separates
// tokens, single and double quotes group them. The compat filter strings in
// the configuration table carry quoted regexes, so plain strings.Fields
// would tear them apart.
func SplitArgs(s string) ([]string, error) {
	var (
		args    []string
		current []rune
		quote   rune
		inToken bool
	)

	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current = append(current, r)
			}
		case r == '\'' || r == '"':
			quote = r
			inToken = true
		case r == ' ' || r == '\t' || r == '\n':
			if inToken {
				args = append(args, string(current))
				current = current[:0]
				inToken = false
			}
		default:
			current = append(current, r)
			inToken = true
		}
	}

	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote in %q", quote, s)
	}
	if inToken {
		args = append(args, string(current))
	}
	return args, nil
}
