package schema

import "strings"

// NameSeparator joins the parts of synthesized entity names.
const NameSeparator = "_"

// CollectionName returns the global name of a collection declared as
// local inside owner. Applied level by level, a collection three levels
// deep in "a" is named "a_b_c_d".
func CollectionName(owner, local string) string {
	return owner + NameSeparator + local
}

// JunctionName returns the name of the junction entity for the unordered
// pair {a, b}. The members are ordered by byte-wise comparison, so the
// result does not depend on argument or declaration order:
//
//	JunctionName("thing", "name") == JunctionName("name", "thing") == "name_thing"
func JunctionName(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + NameSeparator + b
}

// LocalName strips an owner prefix from a synthesized collection name.
// It returns name unchanged if it was not synthesized under owner.
func LocalName(owner, name string) string {
	if owner == "" {
		return name
	}
	if rest, ok := strings.CutPrefix(name, owner+NameSeparator); ok {
		return rest
	}
	return name
}
