package result

import "strings"

// Group is a participant's competition group. The set is closed: every
// class label maps to exactly one of the three groups.
type Group string

const (
	GroupDame  Group = "Dame"
	GroupMann  Group = "Mann"
	GroupPluss Group = "Pluss"
)

// Groups lists all groups in their fixed output order.
var Groups = []Group{GroupDame, GroupMann, GroupPluss}

// groupOrder fixes the ordering of groups in sorted output.
var groupOrder = map[Group]int{
	GroupDame:  1,
	GroupMann:  2,
	GroupPluss: 3,
}

// ClassifyGroup maps a class label such as "Kvinner senior", "Pluss
// 90kg" or "Herrer" to its group. Matching is case-insensitive
// substring matching on the label's keywords. Labels with no
// recognized keyword classify as GroupMann, which is how the result
// pages label unclassed rows.
func ClassifyGroup(classText string) Group {
	label := strings.ToLower(classText)
	switch {
	case strings.Contains(label, "kvinne"), strings.Contains(label, "dame"):
		return GroupDame
	case strings.Contains(label, "pluss"):
		return GroupPluss
	default:
		return GroupMann
	}
}
