package targets

// Period is a target month and year.
type Period struct {
	Month int
	Year  int
}

// ProductTarget is one product line of a staff member's target.
type ProductTarget struct {
	ProductID   int     `json:"product_id"`
	ProductName string  `json:"product_name"`
	Amount      float64 `json:"amount"`
}

// Staff is a marketing staff member with their assigned targets for a period.
type Staff struct {
	NIP           string          `json:"marketing_nip"`
	Name          string          `json:"marketing_name"`
	HasTarget     bool            `json:"has_target"`
	TotalTarget   float64         `json:"total_target"`
	TargetDetails []ProductTarget `json:"target_details"`
}

// BranchProduct is the branch-level allocation of one product.
type BranchProduct struct {
	ProductID        int     `json:"product_id"`
	ProductName      string  `json:"product_name"`
	TotalTarget      float64 `json:"total_target"`
	AssignedAmount   float64 `json:"assigned_amount"`
	UnassignedAmount float64 `json:"unassigned_amount"`
}

// Branch is the branch target a manager distributes among staff.
type Branch struct {
	BranchID   int             `json:"branch_id"`
	BranchName string          `json:"branch_name"`
	Month      int             `json:"month"`
	Year       int             `json:"year"`
	Products   []BranchProduct `json:"products"`
}

// Amount is a product target to assign.
type Amount struct {
	ProductID int     `json:"product_id"`
	Amount    float64 `json:"amount"`
}

// Assignment is the body of an assign request.
type Assignment struct {
	Month   int      `json:"bulan"`
	Targets []Amount `json:"target"`
}

// Total sums the amounts of products.
func Total(products []ProductTarget) float64 {
	var sum float64
	for _, p := range products {
		sum += p.Amount
	}
	return sum
}

// Product returns the branch product with id, if present.
func (b *Branch) Product(id int) (BranchProduct, bool) {
	for _, p := range b.Products {
		if p.ProductID == id {
			return p, true
		}
	}
	return BranchProduct{}, false
}
