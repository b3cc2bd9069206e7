package jobs

// JobRequest is the body for creating or replacing a job.
type JobRequest struct {
	Title          string   `json:"title" binding:"required,max=200"`
	Description    string   `json:"description" binding:"required"`
	RequiredSkills []string `json:"requiredSkills" binding:"required,min=1,dive,max=100"`
	Company        string   `json:"company" binding:"required,max=200"`
	Location       string   `json:"location" binding:"required,max=200"`
	MinExperience  *int     `json:"minExperience" binding:"omitempty,min=0,max=60"`
	Qualifications []string `json:"qualifications" binding:"omitempty,dive,max=500"`
}

func (r JobRequest) toInput() Input {
	return Input{
		Title:          r.Title,
		Description:    r.Description,
		RequiredSkills: r.RequiredSkills,
		Company:        r.Company,
		Location:       r.Location,
		MinExperience:  r.MinExperience,
		Qualifications: r.Qualifications,
	}
}
