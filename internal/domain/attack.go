package domain

// Exchange - распределение суммы HP+MP+YEN, выбранное атакующим для EXCHANGE.
type Exchange struct {
	HP  int `json:"hp"`
	MP  int `json:"mp"`
	Yen int `json:"yen"`
}

func (e Exchange) Sum() int {
	return e.HP + e.MP + e.Yen
}

// AttackData - одна атака в полете.
// Движок хранит ее по значению в очереди; клоны для массовой атаки не делят срезы.
type AttackData struct {
	Attacker *Player
	Defender *Player
	Pieces   []CommandPiece

	Damage    int // -1 пока не определен
	Chance    int // 0 = гарантированно и по одной цели
	Extra     []AttackExtra
	Attribute Attribute

	IsAction     bool
	IsLast       bool
	IsCounter    bool
	IsRetargeted bool

	Mortar        *Item
	AssistantType Planet

	// Решения, принятые сервером один раз и одинаковые для всех наблюдателей.
	DecidedValue     *int
	DecidedHP        *int
	DecidedMystery   Planet
	DecidedExchange  *Exchange
	DecidedItem      *Item
	DecidedAssistant Planet
	AbilityIndex     int
}

func NewAttack(attacker, defender *Player, pieces []CommandPiece) AttackData {
	return AttackData{
		Attacker:     attacker,
		Defender:     defender,
		Pieces:       pieces,
		Damage:       -1,
		Attribute:    AttrUndetermined,
		AbilityIndex: -1,
	}
}

// Clone копирует атаку вместе со срезами и решенными значениями.
func (a AttackData) Clone() AttackData {
	c := a
	c.Pieces = append([]CommandPiece(nil), a.Pieces...)
	c.Extra = append([]AttackExtra(nil), a.Extra...)
	if a.DecidedValue != nil {
		c.DecidedValue = IntPtr(*a.DecidedValue)
	}
	if a.DecidedHP != nil {
		c.DecidedHP = IntPtr(*a.DecidedHP)
	}
	if a.DecidedExchange != nil {
		ex := *a.DecidedExchange
		c.DecidedExchange = &ex
	}
	return c
}

// First - первый кусок цепочки, задающий ее вид. nil для пустой цепочки.
func (a *AttackData) First() *Item {
	if len(a.Pieces) == 0 {
		return nil
	}
	return a.Pieces[0].Item
}

func (a *AttackData) HasExtra(e AttackExtra) bool {
	for _, x := range a.Extra {
		if x == e {
			return true
		}
	}
	return false
}

// Kind - вид атаки первого куска.
func (a *AttackData) Kind() AttackKind {
	if first := a.First(); first != nil {
		return first.AttackKind
	}
	return AttackNone
}

// IsValidAttackItem проверяет, может ли предмет стоять на этой позиции цепочки.
// Первый кусок: не PROTECTOR, магия и SUNDRY только с видом атаки.
// Дальше: модификаторы к оружию без шанса попадания или MAGIC_FREE к магии.
func (a *AttackData) IsValidAttackItem(item *Item, first bool) bool {
	if first {
		if item.Type == ItemTypeProtector {
			return false
		}
		return (item.Type != ItemTypeMagic && item.Type != ItemTypeSundry) || item.AttackKind != AttackNone
	}
	switch item.AttackKind {
	case AttackDoNothing, AttackDiscard, AttackSell, AttackExchange, AttackMystery:
		return false
	}
	head := a.First()
	if head == nil {
		return false
	}
	if item.AttackExtra.IsModifier() && head.Type == ItemTypeWeapon && head.HitRate == 0 {
		return true
	}
	return item.AttackExtra == ExtraMagicFree && head.Type == ItemTypeMagic
}

// CanBeDefendedBy - сложенный атрибут защиты подходит против этой атаки.
func (a *AttackData) CanBeDefendedBy(defense Attribute) bool {
	return CanBeDefendedBy(a.Attribute, defense)
}

// IsMagicFree - последний кусок цепочки снимает стоимость MP со всей цепочки.
func IsMagicFree(pieces []CommandPiece) bool {
	if len(pieces) == 0 {
		return false
	}
	return pieces[len(pieces)-1].Item.AttackExtra == ExtraMagicFree
}

func IntPtr(v int) *int {
	return &v
}
