package domain

// CommandPiece - один разыгрываемый или лежащий в руке экземпляр предмета.
type CommandPiece struct {
	Item *Item

	// Illusion - то, как предмет выглядит для владельца под ILLUSION.
	// IllusionIndex различает несколько одинаковых иллюзий в руке.
	Illusion      *Item
	IllusionIndex int

	// IsAbility - уже привязанная магия, а не свежий предмет из руки.
	IsAbility    bool
	AbilityIndex int

	CostMP int
}

// NewPiece создает кусок без иллюзии.
func NewPiece(item *Item) CommandPiece {
	return CommandPiece{Item: item, IllusionIndex: -1, AbilityIndex: -1}
}

// NewAbilityPiece создает кусок для привязанной магии с индексом в списке способностей.
func NewAbilityPiece(item *Item, index int) CommandPiece {
	p := NewPiece(item)
	p.IsAbility = true
	p.AbilityIndex = index
	return p
}

// PiecesOf оборачивает предметы в куски.
func PiecesOf(items ...*Item) []CommandPiece {
	out := make([]CommandPiece, 0, len(items))
	for _, it := range items {
		out = append(out, NewPiece(it))
	}
	return out
}

// ItemOrIllusion - то, что видит владелец.
func (p CommandPiece) ItemOrIllusion() *Item {
	if p.Illusion != nil {
		return p.Illusion
	}
	return p.Item
}

// ClearIllusion снимает подмену.
func (p *CommandPiece) ClearIllusion() {
	p.Illusion = nil
	p.IllusionIndex = -1
}

// ItemsOf возвращает реальные предметы цепочки.
func ItemsOf(pieces []CommandPiece) []*Item {
	out := make([]*Item, 0, len(pieces))
	for _, p := range pieces {
		out = append(out, p.Item)
	}
	return out
}
