package legacy

// Legacy shapes mirror the JSON written by the previous versions. Field
// names follow the old storage; every field is optional.

type Account struct {
	ID                Text   `json:"id"`
	Name              Text   `json:"name"`
	Institution       Text   `json:"institution"`
	MaskedNumber      Text   `json:"maskedNumber"`
	Last4             Text   `json:"last4"`
	Balance           Number `json:"balance"`
	Type              Text   `json:"type"`
	IncludeInNetWorth Flag   `json:"includeInNetWorth"`
	APR               Number `json:"apr"`
	CreditLimit       Number `json:"creditLimit"`
	MinPaymentPercent Number `json:"minPaymentPercent"`
	CreatedAt         Time   `json:"createdAt"`
	UpdatedAt         Time   `json:"updatedAt"`
}

type Transaction struct {
	ID          Text   `json:"id"`
	Type        Text   `json:"type"`
	Amount      Number `json:"amount"`
	Category    Text   `json:"category"`
	Note        Text   `json:"note"`
	Description Text   `json:"description"`
	Date        Time   `json:"date"`
	// Account holds the account name, or its id in the latest versions.
	Account   Text `json:"account"`
	AccountID Text `json:"accountId"`
	CreatedAt Time `json:"createdAt"`
	UpdatedAt Time `json:"updatedAt"`
}

type Portfolio struct {
	ID              Text        `json:"id"`
	Name            Text        `json:"name"`
	BaseCurrency    Text        `json:"baseCurrency"`
	Currency        Text        `json:"currency"`
	Benchmark       Text        `json:"benchmark"`
	Type            Text        `json:"type"`
	Cash            Number      `json:"cash"`
	Archived        Flag        `json:"archived"`
	TrackingEnabled Flag        `json:"trackingEnabled"`
	Holdings        []Holding   `json:"holdings"`
	Watchlist       []Text      `json:"watchlist"`
	CashHistory     []CashEntry `json:"cashHistory"`
	CreatedAt       Time        `json:"createdAt"`
	UpdatedAt       Time        `json:"updatedAt"`
}

type CashEntry struct {
	ID     Text   `json:"id"`
	Amount Number `json:"amount"`
	Type   Text   `json:"type"` // deposit or withdrawal, when the amount is unsigned
	Date   Time   `json:"date"`
	Note   Text   `json:"note"`
}

type Holding struct {
	ID          Text   `json:"id"`
	PortfolioID Text   `json:"portfolioId"`
	Symbol      Text   `json:"symbol"`
	Name        Text   `json:"name"`
	Type        Text   `json:"type"`
	Currency    Text   `json:"currency"`
	Archived    Flag   `json:"archived"`
	SortOrder   Number `json:"sortOrder"`
	// Quantity and AvgCost describe holdings recorded before lots existed.
	Quantity  Number `json:"quantity"`
	AvgCost   Number `json:"avgCost"`
	Lots      []Lot  `json:"lots"`
	CreatedAt Time   `json:"createdAt"`
	UpdatedAt Time   `json:"updatedAt"`
}

type Lot struct {
	ID       Text   `json:"id"`
	Side     Text   `json:"side"`
	Type     Text   `json:"type"`
	Quantity Number `json:"quantity"`
	Price    Number `json:"price"`
	Fee      Number `json:"fee"`
	Date     Time   `json:"date"`
	Note     Text   `json:"note"`
}

type Goal struct {
	ID                 Text           `json:"id"`
	Name               Text           `json:"name"`
	Target             Number         `json:"target"`
	Current            Number         `json:"current"`
	Currency           Text           `json:"currency"`
	Deadline           Time           `json:"deadline"`
	History            []GoalProgress `json:"history"`
	LinkedTransactions []Text         `json:"linkedTransactions"`
	CreatedAt          Time           `json:"createdAt"`
	UpdatedAt          Time           `json:"updatedAt"`
}

type GoalProgress struct {
	ID     Text   `json:"id"`
	Amount Number `json:"amount"`
	Date   Time   `json:"date"`
	Note   Text   `json:"note"`
}

type Achievement struct {
	ID         Text `json:"id"`
	UnlockedAt Time `json:"unlockedAt"`
}

type Progress struct {
	XP         Number `json:"xp"`
	Level      Number `json:"level"`
	Streak     Number `json:"streak"`
	LastActive Time   `json:"lastActive"`
}

type Group struct {
	ID          Text         `json:"id"`
	Name        Text         `json:"name"`
	Currency    Text         `json:"currency"`
	Members     []Member     `json:"members"`
	Bills       []Bill       `json:"bills"`
	Settlements []Settlement `json:"settlements"`
	CreatedAt   Time         `json:"createdAt"`
}

type Member struct {
	ID   Text `json:"id"`
	Name Text `json:"name"`
}

type Bill struct {
	ID            Text    `json:"id"`
	Title         Text    `json:"title"`
	Amount        Number  `json:"amount"`
	Tax           Number  `json:"tax"`
	TaxMode       Text    `json:"taxMode"`
	Discount      Number  `json:"discount"`
	DiscountMode  Text    `json:"discountMode"`
	FinalAmount   Number  `json:"finalAmount"`
	PaidBy        Text    `json:"paidBy"`
	SplitMode     Text    `json:"splitMode"`
	Date          Time    `json:"date"`
	Splits        []Share `json:"splits"`
	Contributions []Share `json:"contributions"`
	CreatedAt     Time    `json:"createdAt"`
}

// Share is the amount of a member in a bill. Percent is only set by
// percentage splits.
type Share struct {
	MemberID Text   `json:"memberId"`
	Amount   Number `json:"amount"`
	Percent  Number `json:"percent"`
}

type Settlement struct {
	ID     Text   `json:"id"`
	From   Text   `json:"from"`
	To     Text   `json:"to"`
	Amount Number `json:"amount"`
	BillID Text   `json:"billId"`
	Date   Time   `json:"date"`
	Note   Text   `json:"note"`
}

type Debt struct {
	ID         Text   `json:"id"`
	Name       Text   `json:"name"`
	Type       Text   `json:"type"`
	Lender     Text   `json:"lender"`
	Balance    Number `json:"balance"`
	APR        Number `json:"apr"`
	MinPayment Number `json:"minPayment"`
	DueDay     Number `json:"dueDay"`
	CreatedAt  Time   `json:"createdAt"`
	UpdatedAt  Time   `json:"updatedAt"`
}

type Budget struct {
	Currency     Text              `json:"currency"`
	MonthlyLimit Number            `json:"monthlyLimit"`
	Categories   map[string]Number `json:"categories"`
}

type Settings struct {
	BaseCurrency Text `json:"baseCurrency"`
	CostBasis    Text `json:"costBasis"`
}
