// internal/domain/outlet/dto.go
package outlet

type CreateOutletRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Code        string  `json:"code" binding:"required,max=20"`
	Description string  `json:"description" binding:"max=500"`
	Address     Address `json:"address"`
	Phone       string  `json:"phone" binding:"max=20"`
	Email       string  `json:"email" binding:"omitempty,email"`
	Manager     string  `json:"manager" binding:"max=100"`
	Status      Status  `json:"status"`
	Type        Type    `json:"type"`
}

type UpdateOutletRequest struct {
	Name        *string  `json:"name" binding:"omitempty,max=100"`
	Code        *string  `json:"code" binding:"omitempty,max=20"`
	Description *string  `json:"description" binding:"omitempty,max=500"`
	Address     *Address `json:"address"`
	Phone       *string  `json:"phone" binding:"omitempty,max=20"`
	Email       *string  `json:"email" binding:"omitempty,email"`
	Manager     *string  `json:"manager" binding:"omitempty,max=100"`
	Status      *Status  `json:"status"`
	Type        *Type    `json:"type"`
}

type ListFilters struct {
	Status string `form:"status"`
	Type   string `form:"type"`
	Search string `form:"search"`
}
