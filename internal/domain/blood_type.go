package domain

// BloodType is one of the eight ABO/Rh blood groups.
type BloodType string

const (
	ONeg  BloodType = "O-"
	OPos  BloodType = "O+"
	ANeg  BloodType = "A-"
	APos  BloodType = "A+"
	BNeg  BloodType = "B-"
	BPos  BloodType = "B+"
	ABNeg BloodType = "AB-"
	ABPos BloodType = "AB+"
)

// BloodTypes lists all valid blood groups in display order.
var BloodTypes = []BloodType{ONeg, OPos, ANeg, APos, BNeg, BPos, ABNeg, ABPos}

// compatibility maps a donor blood group to the recipient groups it may give to.
var compatibility = map[BloodType][]BloodType{
	ONeg:  {ONeg, OPos, ANeg, APos, BNeg, BPos, ABNeg, ABPos}, // universal donor
	OPos:  {OPos, APos, BPos, ABPos},
	ANeg:  {ANeg, APos, ABNeg, ABPos},
	APos:  {APos, ABPos},
	BNeg:  {BNeg, BPos, ABNeg, ABPos},
	BPos:  {BPos, ABPos},
	ABNeg: {ABNeg, ABPos},
	ABPos: {ABPos}, // can only donate to AB+
}

// CanDonate reports whether donor blood may be given to recipient blood.
// Unknown blood groups fail closed.
func CanDonate(donor, recipient BloodType) bool {
	for _, r := range compatibility[donor] {
		if r == recipient {
			return true
		}
	}
	return false
}

// IsValid reports whether b is one of the eight blood groups.
func (b BloodType) IsValid() bool {
	_, ok := compatibility[b]
	return ok
}
