package dto

import "github.com/noah-isme/library-portal-api/internal/models"

// StudentPayload is the registration form data. DateOfBirth arrives in the
// display format (DD/MM/YYYY) and is normalized before storage.
type StudentPayload struct {
	Name             string `json:"name"`
	PRN              string `json:"prn"`
	Course           string `json:"course"`
	Mobile           string `json:"mobile"`
	ParentMobile     string `json:"parentMobile"`
	RollNumber       string `json:"rollNumber"`
	Gender           string `json:"gender"`
	BloodGroup       string `json:"bloodGroup"`
	Category         string `json:"category"`
	DateOfBirth      string `json:"dateOfBirth"`
	AdmittedYear     string `json:"admittedYear"`
	PermanentAddress string `json:"permanentAddress"`
	LocalAddress     string `json:"localAddress"`
}

// RegisterStudentRequest creates an identity account plus a student record.
type RegisterStudentRequest struct {
	Email       string         `json:"email"`
	Password    string         `json:"password"`
	StudentData StudentPayload `json:"studentData"`
}

// RegisterStudentResponse reports the generated identifiers.
type RegisterStudentResponse struct {
	Success       bool   `json:"success"`
	LibraryNumber string `json:"libraryNumber"`
	UserID        string `json:"userId"`
}

// LoginRequest authenticates a student by email, PRN or mobile number.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// UserInfo is the account slice exposed to clients.
type UserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	Success     bool     `json:"success"`
	AccessToken string   `json:"accessToken"`
	User        UserInfo `json:"user"`
}

// LibrarianLoginRequest checks the configured librarian credential pair.
type LibrarianLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LibrarianLoginResponse confirms the librarian role.
type LibrarianLoginResponse struct {
	Success bool   `json:"success"`
	Role    string `json:"role"`
	Email   string `json:"email"`
}

// ProfileResponse wraps the caller's own record.
type ProfileResponse struct {
	Success bool                  `json:"success"`
	Student *models.StudentRecord `json:"student"`
}

// StudentsResponse wraps the full index-excluded listing.
type StudentsResponse struct {
	Success  bool                   `json:"success"`
	Students []models.StudentRecord `json:"students"`
}

// StudentResponse wraps a single record, e.g. after an update.
type StudentResponse struct {
	Success bool                  `json:"success"`
	Student *models.StudentRecord `json:"student"`
}

// DeleteResponse acknowledges a deletion.
type DeleteResponse struct {
	Success bool `json:"success"`
}

// UploadPhotoResponse returns the signed retrieval URL.
type UploadPhotoResponse struct {
	Success  bool   `json:"success"`
	PhotoURL string `json:"photoUrl"`
}

// StatsResponse wraps the dashboard summary.
type StatsResponse struct {
	Success bool                   `json:"success"`
	Stats   *models.DashboardStats `json:"stats"`
}

// UpdateStudentRequest is a partial merge: only non-nil fields are applied,
// fields are never deleted. Immutable fields (userId, libraryNumber,
// registrationDate) have no counterpart here.
type UpdateStudentRequest struct {
	Name             *string `json:"name"`
	PRN              *string `json:"prn"`
	Email            *string `json:"email"`
	Mobile           *string `json:"mobile"`
	ParentMobile     *string `json:"parentMobile"`
	RollNumber       *string `json:"rollNumber"`
	Course           *string `json:"course"`
	AdmittedYear     *string `json:"admittedYear"`
	Gender           *string `json:"gender"`
	BloodGroup       *string `json:"bloodGroup"`
	Category         *string `json:"category"`
	DateOfBirth      *string `json:"dateOfBirth"`
	PermanentAddress *string `json:"permanentAddress"`
	LocalAddress     *string `json:"localAddress"`
}
