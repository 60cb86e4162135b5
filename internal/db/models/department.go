package models

// Departments lists every department code a student or listing may carry.
var Departments = []string{
	"CSE", "EEE", "ME", "CE", "ChE", "BME", "IPE", "MME", "NAME", "WRE", "ARCH",
}

func ValidDepartment(code string) bool {
	for _, d := range Departments {
		if d == code {
			return true
		}
	}
	return false
}

// MaxLevel returns the highest study level for a department. Architecture
// runs a five-year programme; everything else is four.
func MaxLevel(department string) int {
	if department == "ARCH" {
		return 5
	}
	return 4
}

func MaxTerm(department string) int {
	if department == "ARCH" {
		return 10
	}
	return 8
}
