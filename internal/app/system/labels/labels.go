// Package labels holds the report's user-facing strings, shared by the web
// pages and the terminal clients.
package labels

// Strings holds the report's user-facing labels.
type Strings struct {
	PluginName  string
	Heading     string
	Description string
	Group       string
	Course      string
	Name        string
	Visible     string
	Link        string
	ActivityID  string
	Open        string
	Delete      string
	Confirm     string
	Yes         string
	No          string
	Empty       string
	NoneFound   string
	LoadFailed  string
}

// English is the only shipped locale.
var English = Strings{
	PluginName:  "LTI Usage",
	Heading:     "LTI usage",
	Description: "List of LTI activities across the site",
	Group:       "Group",
	Course:      "Course",
	Name:        "Name",
	Visible:     "Visible",
	Link:        "Link",
	ActivityID:  "Activity ID",
	Open:        "Open",
	Delete:      "Delete",
	Confirm:     "Are you sure you want to delete this LTI?",
	Yes:         "Yes",
	No:          "No",
	Empty:       "No LTI activities use this tool.",
	NoneFound:   "No LTI activities found.",
	LoadFailed:  "Could not load this page of activities.",
}

// YesNo renders b as the Yes or No label.
func (s Strings) YesNo(b bool) string {
	if b {
		return s.Yes
	}
	return s.No
}
