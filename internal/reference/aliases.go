// SPDX-License-Identifier: Apache-2.0

package reference

import (
	"strings"

	"github.com/gemaraproj/ooxml-compliance/internal/similarity"
)

// Canonical field names.
const (
	Release             = "release"
	BusinessApplication = "business_application"
	BusinessAppID       = "business_app_id"
	EnterpriseReleaseID = "enterprise_release_id"
	ClarityProjectID    = "clarity_project_id"
	ProjectName         = "project_name"
	TaskID              = "task_id"
	EndDate             = "end_date"
	InstallStartDate    = "install_start_date"
)

type alias struct {
	field   string
	headers []string
}

// aliases lists the accepted spellings of each field, most specific first.
var aliases = []alias{
	{Release, []string{"Release", "Release Version", "Version"}},
	{BusinessApplication, []string{"Business Application", "Application Name", "Business Application Name"}},
	{BusinessAppID, []string{"Business Application ID", "Business App ID", "App ID", "Application ID"}},
	{EnterpriseReleaseID, []string{"Enterprise Release ID", "Release ID", "Enterprise ID"}},
	{ClarityProjectID, []string{"Clarity Project ID", "Project ID", "Clarity ID"}},
	{ProjectName, []string{"Project Name", "Project"}},
	{TaskID, []string{"Task ID", "Task"}},
	{EndDate, []string{"End Date", "Completion Date", "Target Date", "Due Date"}},
	{InstallStartDate, []string{"Install Start Date", "Implementation Date", "Install Date"}},
}

var dateFields = map[string]bool{EndDate: true, InstallStartDate: true}

// Canonical maps a key or column header to its canonical field name.
// Unknown keys are lower-cased with spaces and hyphens turned into
// underscores.
func Canonical(key string) string {
	want := headerKey(key)
	for _, a := range aliases {
		if headerKey(a.field) == want {
			return a.field
		}
		for _, h := range a.headers {
			if headerKey(h) == want {
				return a.field
			}
		}
	}
	return strings.NewReplacer(" ", "_", "-", "_").Replace(strings.ToLower(strings.TrimSpace(key)))
}

// headerKey compares headers ignoring case, spacing and separators.
func headerKey(s string) string {
	return similarity.Normalize(s)
}

func normalize(field, v string) string {
	if dateFields[field] {
		return similarity.NormalizeDate(v)
	}
	return strings.TrimSpace(v)
}
