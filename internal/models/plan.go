package models

// Plan — тариф из каталога. Price в целых долларах, Credits — стартовое
// начисление, Days — период подписочного тарифа.
type Plan struct {
	CodeName       string `json:"code_name"`
	Price          int    `json:"price"`
	Credits        int    `json:"credits"`
	Days           int    `json:"days"`
	IsSubscription bool   `json:"is_subscription"`
}
