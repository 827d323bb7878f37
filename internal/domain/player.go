package domain

import (
	"errors"
	"math/rand"
)

const (
	StatCap       = 99
	HandLimit     = 16
	InitialHP     = 40
	InitialMP     = 10
	InitialYen    = 20
	InitialDeal   = 10
	AssistantHP   = 20
	DyingAttackHP = 30
)

var (
	ErrItemNotHeld   = errors.New("item not in hand")
	ErrMagicNotBound = errors.New("magic not bound")
	ErrNotEnoughMP   = errors.New("not enough MP")
)

// diseases - цепочка болезней по возрастанию тяжести.
var diseases = []Harm{HarmCold, HarmFever, HarmHell, HarmHeaven}

// Player - участник матча (человек или бот).
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Team Team   `json:"team"`

	HP  int `json:"hp"`
	MP  int `json:"mp"`
	Yen int `json:"yen"`

	Disease     Harm   `json:"disease,omitempty"`
	WorseChance int    `json:"-"`
	Harms       []Harm `json:"harms,omitempty"`

	Deal   int            `json:"deal"`
	Hand   []CommandPiece `json:"-"`
	Magics []*Item        `json:"-"`

	Assistant *Assistant `json:"assistant,omitempty"`

	Ready             bool `json:"ready"`
	Dead              bool `json:"dead"`
	Lost              bool `json:"lost"`
	WaitingAttackTurn bool `json:"waitingAttackTurn"`
	IsBot             bool `json:"isBot"`
}

func NewPlayer(id, name string, team Team) *Player {
	p := &Player{ID: id, Name: name, Team: team}
	p.Reset()
	return p
}

// Reset возвращает игрока к стартовому состоянию матча.
func (p *Player) Reset() {
	p.Ready = false
	p.Dead = false
	p.Lost = false
	p.WaitingAttackTurn = false

	p.HP = InitialHP
	p.MP = InitialMP
	p.Yen = InitialYen

	p.Disease = HarmNone
	p.WorseChance = 0
	p.Harms = nil

	p.Deal = InitialDeal
	p.Hand = nil
	p.Magics = nil
	p.Assistant = nil
}

func (p *Player) String() string {
	return p.Name
}

// IsEnemy: SINGLE враждует со всеми, команды - между собой.
func (p *Player) IsEnemy(other *Player) bool {
	return other != p && (other.Team == TeamSingle || other.Team != p.Team)
}

func (p *Player) IsAlive() bool {
	return !p.Dead
}

// --- ХАРАКТЕРИСТИКИ ---

func (p *Player) IncreaseHP(amount int) {
	p.HP = min(StatCap, p.HP+max(0, amount))
}

func (p *Player) IncreaseMP(amount int) {
	p.MP = min(StatCap, p.MP+max(0, amount))
}

func (p *Player) IncreaseYen(amount int) {
	p.Yen = min(StatCap, p.Yen+max(0, amount))
}

// TakeDamage сначала бьет по щиту ассистента, остаток - по HP.
func (p *Player) TakeDamage(damage int) {
	if damage < 0 {
		return
	}
	if p.Assistant != nil && p.Assistant.HP > 0 {
		damage = p.Assistant.AbsorbDamage(damage)
		if p.Assistant.HP == 0 {
			p.Assistant = nil
		}
	}
	p.HP = max(0, p.HP-damage)
}

// DecreaseYen списывает деньги, нехватка переходит в MP, затем в HP.
func (p *Player) DecreaseYen(amount int) {
	p.Yen -= amount
	if p.Yen >= 0 {
		return
	}
	p.MP += p.Yen
	p.Yen = 0
	if p.MP >= 0 {
		return
	}
	p.HP = max(0, p.HP+p.MP)
	p.MP = 0
}

// SetStats выставляет HP/MP/YEN напрямую (EXCHANGE).
func (p *Player) SetStats(ex Exchange) {
	p.HP = clampStat(ex.HP)
	p.MP = clampStat(ex.MP)
	p.Yen = clampStat(ex.Yen)
}

func clampStat(v int) int {
	return max(0, min(StatCap, v))
}

// Kill обнуляет HP и снимает ассистента.
func (p *Player) Kill() {
	p.HP = 0
	p.Assistant = nil
}

// --- БОЛЕЗНИ И ВРЕД ---

func (p *Player) HasHarm(h Harm) bool {
	if h.IsDisease() {
		return p.Disease == h
	}
	for _, x := range p.Harms {
		if x == h {
			return true
		}
	}
	return false
}

// AddHarm накладывает болезнь или статус.
// Болезнь ухудшается по цепочке; ухудшение HEAVEN убивает.
func (p *Player) AddHarm(h Harm) {
	if h == HarmNone {
		return
	}
	if !h.IsDisease() {
		if !p.HasHarm(h) {
			p.Harms = append(p.Harms, h)
		}
		return
	}

	switch {
	case p.Disease == HarmNone:
		p.Disease = h
	case p.Disease == HarmHeaven:
		p.Kill()
	default:
		cur := diseaseIndex(p.Disease)
		if cur < diseaseIndex(h) {
			p.Disease = h
		} else {
			p.Disease = diseases[cur+1]
		}
	}
	p.WorseChance = 0
}

func diseaseIndex(h Harm) int {
	for i, d := range diseases {
		if d == h {
			return i
		}
	}
	return -1
}

// RemoveAllHarms снимает все болезни и статусы.
// onlyLower снимает только COLD/FEVER, FOG и GLORY.
func (p *Player) RemoveAllHarms(onlyLower bool) {
	if !onlyLower {
		p.Disease = HarmNone
		p.WorseChance = 0
		p.Harms = nil
		p.ClearIllusions()
		return
	}

	if p.Disease == HarmCold || p.Disease == HarmFever {
		p.Disease = HarmNone
		p.WorseChance = 0
	}
	p.removeHarm(HarmFog)
	p.removeHarm(HarmGlory)
}

func (p *Player) removeHarm(h Harm) {
	for i, x := range p.Harms {
		if x == h {
			p.Harms = append(p.Harms[:i], p.Harms[i+1:]...)
			return
		}
	}
}

func (p *Player) HasLowerDisease() bool {
	return p.Disease == HarmCold || p.Disease == HarmFever || p.HasHarm(HarmFog) || p.HasHarm(HarmGlory)
}

// DiseaseEffect применяет тик болезни. HEAVEN лечит.
// Возвращает false, если болезни нет.
func (p *Player) DiseaseEffect() bool {
	switch p.Disease {
	case HarmCold:
		p.TakeDamage(1)
	case HarmFever:
		p.TakeDamage(2)
	case HarmHell:
		p.TakeDamage(5)
	case HarmHeaven:
		p.IncreaseHP(5)
	default:
		return false
	}
	return true
}

// --- РУКА И МАГИЯ ---

// DealItem кладет предмет в руку. Полная рука молча отказывает.
func (p *Player) DealItem(item *Item) bool {
	if len(p.Hand) >= HandLimit {
		return false
	}
	p.Hand = append(p.Hand, NewPiece(item))
	return true
}

func (p *Player) handIndex(id int) int {
	for i, piece := range p.Hand {
		if piece.Item.ID == id {
			return i
		}
	}
	return -1
}

func (p *Player) HasItem(id int) bool {
	return p.handIndex(id) >= 0
}

func (p *Player) HasMagic(id int) bool {
	return p.MagicIndex(id) >= 0
}

func (p *Player) MagicIndex(id int) int {
	for i, m := range p.Magics {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// Items - реальные предметы руки по порядку.
func (p *Player) Items() []*Item {
	return ItemsOf(p.Hand)
}

func (p *Player) DiscardItem(id int) bool {
	idx := p.handIndex(id)
	if idx < 0 {
		return false
	}
	p.Hand = append(p.Hand[:idx], p.Hand[idx+1:]...)
	return true
}

func (p *Player) DiscardMagic(id int) bool {
	idx := p.MagicIndex(id)
	if idx < 0 {
		return false
	}
	p.Magics = append(p.Magics[:idx], p.Magics[idx+1:]...)
	return true
}

// UseItem тратит предмет из руки.
// FIXED не расходуется, MAGIC переходит в способности и стоит MP (если не free).
func (p *Player) UseItem(item *Item, free bool) error {
	idx := p.handIndex(item.ID)
	if idx < 0 {
		return ErrItemNotHeld
	}
	switch item.Type {
	case ItemTypeFixed:
		return nil
	case ItemTypeMagic:
		if !free && p.MP < item.MPCost() {
			return ErrNotEnoughMP
		}
		p.Magics = append(p.Magics, item)
		p.Hand = append(p.Hand[:idx], p.Hand[idx+1:]...)
		if !free {
			p.MP -= item.MPCost()
		}
	default:
		p.Hand = append(p.Hand[:idx], p.Hand[idx+1:]...)
	}
	return nil
}

// TryUseMagic применяет уже привязанную магию.
// ErrMagicNotBound означает, что магию надо брать из руки.
func (p *Player) TryUseMagic(item *Item, free bool) error {
	if !p.HasMagic(item.ID) {
		return ErrMagicNotBound
	}
	if !free && p.MP < item.MPCost() {
		return ErrNotEnoughMP
	}
	if !free {
		p.MP -= item.MPCost()
	}
	return nil
}

// Consume тратит кусок цепочки: сначала как привязанную магию, иначе из руки.
func (p *Player) Consume(item *Item, free bool) error {
	if item.Type == ItemTypeMagic {
		err := p.TryUseMagic(item, free)
		if !errors.Is(err, ErrMagicNotBound) {
			return err
		}
	}
	return p.UseItem(item, free)
}

// RandomItem - случайный предмет руки или nil.
func (p *Player) RandomItem(rng *rand.Rand) *Item {
	if len(p.Hand) == 0 {
		return nil
	}
	return p.Hand[rng.Intn(len(p.Hand))].Item
}

// RandomMagic - случайная привязанная магия или nil.
func (p *Player) RandomMagic(rng *rand.Rand) *Item {
	if len(p.Magics) == 0 {
		return nil
	}
	return p.Magics[rng.Intn(len(p.Magics))]
}

// --- ИЛЛЮЗИИ ---

// ClearIllusions снимает подмены со всей руки.
func (p *Player) ClearIllusions() {
	for i := range p.Hand {
		p.Hand[i].ClearIllusion()
	}
}

// FindPiece ищет кусок руки так, как его видит клиент:
// по иллюзии и ее индексу, если они заданы, иначе по реальному ID.
func (p *Player) FindPiece(itemID, illusionIndex int) (CommandPiece, bool) {
	for _, piece := range p.Hand {
		if illusionIndex >= 0 {
			if piece.Illusion != nil && piece.Illusion.ID == itemID && piece.IllusionIndex == illusionIndex {
				return piece, true
			}
			continue
		}
		if piece.Illusion == nil && piece.Item.ID == itemID {
			return piece, true
		}
	}
	return CommandPiece{}, false
}
