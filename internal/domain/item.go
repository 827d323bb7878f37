package domain

// Известные ID предметов каталога, на которые опирается движок.
const (
	ItemDoNothing       = 0
	ItemDiscard         = 1
	ItemDyingAttack     = 117
	ItemCounterRingA    = 187 // ответ равен урону
	ItemCounterRingB    = 190 // ответ равен двойному урону
	ItemCounterRingC    = 193 // ответ равен двойному урону
	ItemCounterRingD    = 194 // ответ равен урону
	ItemRemoveAttribute = 195
	ItemRevive          = 244
	ItemMortar          = 245
)

// Item - неизменяемая запись каталога. После загрузки не меняется.
type Item struct {
	ID           int          `json:"id"`
	Name         string       `json:"name"`
	Type         ItemType     `json:"type"`
	AttackKind   AttackKind   `json:"attackKind,omitempty"`
	AttackExtra  AttackExtra  `json:"attackExtra,omitempty"`
	DefenseKind  DefenseKind  `json:"defenseKind,omitempty"`
	DefenseExtra DefenseExtra `json:"defenseExtra,omitempty"`
	Attribute    Attribute    `json:"attribute,omitempty"`
	Value        int          `json:"value,omitempty"`
	SubValue     int          `json:"subValue,omitempty"` // стоимость MP для магии или вторичная величина
	HitRate      int          `json:"hitRate,omitempty"`  // 0 = гарантированно по одной цели
	Price        int          `json:"price,omitempty"`
	Weight       int          `json:"weight,omitempty"`
	Assistant    Planet       `json:"assistant,omitempty"` // предмет из пула ассистента этой планеты
}

// IsAtkHarm - атакующий эффект накладывает болезнь или статус.
func (it *Item) IsAtkHarm() bool {
	return it.AttackExtra.Harm() != HarmNone
}

// IsDefHarm - защитный эффект накладывает болезнь или статус на защищающегося.
func (it *Item) IsDefHarm() bool {
	return it.DefenseExtra.Harm() != HarmNone
}

// Atk - атакующая сила предмета.
func (it *Item) Atk() int {
	if it.AttackKind == AttackAtk {
		return it.Value
	}
	if it.AttackExtra == ExtraIncreaseAtk || it.AttackExtra == ExtraAddAttribute {
		switch it.Type {
		case ItemTypeWeapon, ItemTypeMagic:
			return it.Value
		case ItemTypeProtector, ItemTypeSundry:
			return it.SubValue
		}
	}
	return 0
}

// Def - защитная сила предмета.
func (it *Item) Def() int {
	if it.DefenseKind != DefenseDfs {
		return 0
	}
	switch it.Type {
	case ItemTypeWeapon:
		return it.SubValue
	case ItemTypeProtector:
		return it.Value
	}
	return 0
}

// MPCost - сколько MP стоит применение (только для магии).
func (it *Item) MPCost() int {
	if it.Type != ItemTypeMagic {
		return 0
	}
	return it.SubValue
}

// IsSimilarTo - предметы одного типа с совместимым атрибутом.
// Используется для подбора иллюзорной подмены.
func (it *Item) IsSimilarTo(other *Item) bool {
	if other == nil || it.Type != other.Type {
		return false
	}
	return it.Attribute == other.Attribute || it.Attribute == AttrNone || other.Attribute == AttrNone
}

// IsReplaceableBy - other может показываться вместо it под действием ILLUSION.
func (it *Item) IsReplaceableBy(other *Item) bool {
	return it.Type != ItemTypeFixed && other != nil && other.ID != it.ID && it.IsSimilarTo(other)
}
