package dump

import (
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
	"github.com/leapstack-labs/seeddump/pkg/core"
	"github.com/leapstack-labs/seeddump/pkg/literal"
)

// nilReference is emitted in place of a token when the foreign key is null.
const nilReference = "nil"

// consumedAttributes returns the attributes a belongs-to folds into its
// reference: the foreign key and, when polymorphic, the type attribute.
func consumedAttributes(a core.Association) []string {
	if a.Polymorphic && a.ForeignType != "" {
		return []string{a.ForeignKey, a.ForeignType}
	}
	return []string{a.ForeignKey}
}

// resolveReference renders one belongs-to association of rec as a bare
// token (import mode) or a named "assoc: token" fragment.
func resolveReference(rec core.Record, a core.Association, importMode bool) (string, error) {
	id, err := rec.Attribute(a.ForeignKey)
	if err != nil {
		return "", err
	}

	model := a.Model
	if a.Polymorphic {
		typ, err := rec.Attribute(a.ForeignType)
		if err != nil {
			return "", err
		}
		model = literal.Raw(typ)
	}

	token := referenceToken(model, id)
	if importMode {
		return token, nil
	}
	return label(a.Name) + " " + token, nil
}

// referenceToken builds the "<type>_<id>" variable name for a record of
// model with the given id. A null id or an empty type yields nil.
func referenceToken(model string, id any) string {
	raw := literal.Raw(id)
	if id == nil || raw == "" || model == "" {
		return nilReference
	}
	return identifier(inflect.Underscore(model) + "_" + raw)
}

// identifier replaces every rune that cannot appear in a local variable
// name with an underscore.
func identifier(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return '_'
	}, s)
}

// label renders an attribute name as a hash key label ("name:" or
// "\"odd name\":").
func label(name string) string {
	sym := literal.Symbol(name)
	return sym[1:] + ":"
}
