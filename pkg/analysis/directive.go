package analysis

import "strings"

// Delimiter separates the program part from the template part in the
// model reply. The analysis prompts pin this exact line.
const Delimiter = "---RESPOSTA---"

// Placeholder is the token in the template where the formatted result
// is substituted.
const Placeholder = "[RESULTADO]"

// Directive is a parsed model reply: the analysis program and the
// response template it should fill.
type Directive struct {
	Program  string
	Template string
}

// ParseDirective splits a raw model reply into program and template.
// Code fences are stripped first; the remainder must contain exactly one
// delimiter line. Anything else is a FormatError.
func ParseDirective(raw string) (*Directive, error) {
	cleaned := stripCodeFences(raw)
	if strings.TrimSpace(cleaned) == "" {
		return nil, &FormatError{Msg: "empty reply"}
	}

	parts := strings.Split(cleaned, Delimiter)
	switch len(parts) {
	case 1:
		return nil, &FormatError{Msg: "missing delimiter"}
	case 2:
		// ok
	default:
		return nil, &FormatError{Msg: "multiple delimiters"}
	}

	program := strings.TrimSpace(parts[0])
	template := strings.TrimSpace(parts[1])
	if program == "" {
		return nil, &FormatError{Msg: "empty program part"}
	}
	if template == "" {
		return nil, &FormatError{Msg: "empty template part"}
	}

	return &Directive{Program: program, Template: template}, nil
}

// stripCodeFences removes markdown code fence lines the model sometimes
// wraps its reply in, keeping the fenced content.
func stripCodeFences(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
