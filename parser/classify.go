package parser

import "slices"

// Classify assigns each constant to the first rule, in declaration order,
// whose pattern matches its name. The result is grouped by enumeration
// type, in the order the types first appear in rules, keeping scan order
// within a group. Constants matching no rule are returned separately.
func Classify(rules []EnumRule, consts []ScannedConstant) (classified []ClassifiedConstant, unmatched []ScannedConstant) {
	var types []*Type
	for _, r := range rules {
		if !slices.Contains(types, r.Type) {
			types = append(types, r.Type)
		}
	}
	groups := make([][]ClassifiedConstant, len(types))

	for _, c := range consts {
		i := firstMatch(rules, c.Name)
		if i < 0 {
			unmatched = append(unmatched, c)
			continue
		}
		g := slices.Index(types, rules[i].Type)
		groups[g] = append(groups[g], ClassifiedConstant{Name: c.Name, Type: rules[i].Type, Value: c.Value})
	}

	for _, g := range groups {
		classified = append(classified, g...)
	}
	return classified, unmatched
}

func firstMatch(rules []EnumRule, name string) int {
	for i, r := range rules {
		if r.Match(name) {
			return i
		}
	}
	return -1
}
