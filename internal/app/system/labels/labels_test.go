package labels

import "testing"

func TestYesNo(t *testing.T) {
	if got := English.YesNo(true); got != "Yes" {
		t.Errorf("YesNo(true) = %q", got)
	}
	if got := English.YesNo(false); got != "No" {
		t.Errorf("YesNo(false) = %q", got)
	}
}

func TestEnglish_Complete(t *testing.T) {
	for name, v := range map[string]string{
		"Heading": English.Heading, "Course": English.Course, "Name": English.Name,
		"Visible": English.Visible, "Link": English.Link, "NoneFound": English.NoneFound,
		"Group": English.Group, "ActivityID": English.ActivityID,
	} {
		if v == "" {
			t.Errorf("%s is empty", name)
		}
	}
}
