package usecase

import (
	"fmt"
	"strings"

	"roboterms/internal/domain"
)

const (
	PlaceholderCompany = "COMPANY"
	PlaceholderWebsite = "WEBSITE"
)

// RenderPolicyBody fills {NAME} placeholders in body from values.
//
// "{{" and "}}" render as literal braces. Brace content that is not shaped
// like a placeholder name, such as "{ a: 1 }", is copied through unchanged.
// A placeholder name missing from values, an unclosed "{" or a stray "}"
// fails with domain.ErrRenderPolicy.
func RenderPolicyBody(body string, values map[string]string) (string, error) {
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); {
		switch body[i] {
		case '{':
			if i+1 < len(body) && body[i+1] == '{' {
				b.WriteByte('{')
				i += 2
				continue
			}
			end := strings.IndexAny(body[i+1:], "{}")
			if end < 0 || body[i+1+end] == '{' {
				return "", fmt.Errorf("%w: unclosed '{' at offset %d", domain.ErrRenderPolicy, i)
			}
			field := body[i+1 : i+1+end]
			if isPlaceholderName(field) {
				value, ok := values[field]
				if !ok {
					return "", fmt.Errorf("%w: unknown placeholder {%s}", domain.ErrRenderPolicy, field)
				}
				b.WriteString(value)
			} else {
				b.WriteString(body[i : i+end+2])
			}
			i += end + 2
		case '}':
			if i+1 < len(body) && body[i+1] == '}' {
				b.WriteByte('}')
				i += 2
				continue
			}
			return "", fmt.Errorf("%w: single '}' at offset %d", domain.ErrRenderPolicy, i)
		default:
			b.WriteByte(body[i])
			i++
		}
	}
	return b.String(), nil
}

// RenderForCompany substitutes {COMPANY} and {WEBSITE}.
func RenderForCompany(body string, company domain.Company) (string, error) {
	return RenderPolicyBody(body, map[string]string{
		PlaceholderCompany: company.Name,
		PlaceholderWebsite: company.Website,
	})
}

func isPlaceholderName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
