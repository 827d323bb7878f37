package domain

// --- ТИП ПРЕДМЕТА ---

type ItemType uint8

const (
	ItemTypeNone ItemType = iota
	ItemTypeWeapon
	ItemTypeMagic
	ItemTypeSundry
	ItemTypeTrade
	ItemTypeProtector
	ItemTypeFixed
)

var itemTypeTags = newTagTable(map[ItemType]string{
	ItemTypeWeapon:    "WEAPON",
	ItemTypeMagic:     "MAGIC",
	ItemTypeSundry:    "SUNDRY",
	ItemTypeTrade:     "TRADE",
	ItemTypeProtector: "PROTECTOR",
	ItemTypeFixed:     "FIXED",
})

func ParseItemType(s string) (ItemType, bool) { return itemTypeTags.parse(s) }
func (t ItemType) String() string { return itemTypeTags.name(t) }
func (t ItemType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }
func (t *ItemType) UnmarshalText(text []byte) error { return itemTypeTags.unmarshal(t, text, "item type") }

// --- АТРИБУТ (СТИХИЯ) ---

// Attribute - стихия предмета или составной атаки.
// AttrNone ("") означает нейтральный/смешанный атрибут.
// AttrUndetermined встречается только в AttackData, пока ни одна часть цепочки его не задала.
type Attribute uint8

const (
	AttrNone Attribute = iota
	AttrFire
	AttrWater
	AttrTree
	AttrSoil
	AttrLight
	AttrDark
	AttrUndetermined
)

var attributeTags = newTagTable(map[Attribute]string{
	AttrFire:  "FIRE",
	AttrWater: "WATER",
	AttrTree:  "TREE",
	AttrSoil:  "SOIL",
	AttrLight: "LIGHT",
	AttrDark:  "DARK",
})

func ParseAttribute(s string) (Attribute, bool) { return attributeTags.parse(s) }

func (a Attribute) String() string {
	if a == AttrUndetermined {
		return "UNDETERMINED"
	}
	return attributeTags.name(a)
}

func (a Attribute) MarshalText() ([]byte, error) {
	if a == AttrUndetermined {
		return []byte{}, nil
	}
	return []byte(a.String()), nil
}

func (a *Attribute) UnmarshalText(text []byte) error {
	return attributeTags.unmarshal(a, text, "attribute")
}

// IsElemental - одна из пяти стихий, которым нужна подходящая защита.
func (a Attribute) IsElemental() bool {
	return a >= AttrFire && a <= AttrLight
}

// --- ВИД АТАКИ ---

type AttackKind uint8

const (
	AttackNone AttackKind = iota
	AttackAtk
	AttackDoNothing
	AttackDiscard
	AttackExchange
	AttackSell
	AttackBuy
	AttackRemoveItems
	AttackRemoveAbilities
	AttackMystery
	AttackSetAssistant
	AttackIncreaseOrDecreaseHP
	AttackAddItem
	AttackIncreaseHP
	AttackIncreaseMP
	AttackIncreaseYen
	AttackAbsorbYen
	AttackScatterYen
	AttackRemoveAllHarms
	AttackRemoveLowerHarms
	AttackAddHarm
)

var attackKindTags = newTagTable(map[AttackKind]string{
	AttackAtk:                  "ATK",
	AttackDoNothing:            "DO_NOTHING",
	AttackDiscard:              "DISCARD",
	AttackExchange:             "EXCHANGE",
	AttackSell:                 "SELL",
	AttackBuy:                  "BUY",
	AttackRemoveItems:          "REMOVE_ITEMS",
	AttackRemoveAbilities:      "REMOVE_ABILITIES",
	AttackMystery:              "MYSTERY",
	AttackSetAssistant:         "SET_ASSISTANT",
	AttackIncreaseOrDecreaseHP: "INCREASE_OR_DECREASE_HP",
	AttackAddItem:              "ADD_ITEM",
	AttackIncreaseHP:           "INCREASE_HP",
	AttackIncreaseMP:           "INCREASE_MP",
	AttackIncreaseYen:          "INCREASE_YEN",
	AttackAbsorbYen:            "ABSORB_YEN",
	AttackScatterYen:           "SCATTER_YEN",
	AttackRemoveAllHarms:       "REMOVE_ALL_HARMS",
	AttackRemoveLowerHarms:     "REMOVE_LOWER_HARMS",
	AttackAddHarm:              "ADD_HARM",
})

func ParseAttackKind(s string) (AttackKind, bool) { return attackKindTags.parse(s) }
func (k AttackKind) String() string { return attackKindTags.name(k) }
func (k AttackKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }
func (k *AttackKind) UnmarshalText(text []byte) error { return attackKindTags.unmarshal(k, text, "attack kind") }

// --- ДОПОЛНИТЕЛЬНЫЙ ЭФФЕКТ АТАКИ ---

type AttackExtra uint8

const (
	ExtraNone AttackExtra = iota
	ExtraIncreaseAtk
	ExtraDoubleAtk
	ExtraWideAtk
	ExtraAddAttribute
	ExtraMagicFree
	ExtraMagical
	ExtraPestle
	ExtraMortar
	ExtraToEnemy
	ExtraAbsorbHP
	ExtraDamageToSelf
	ExtraRevive
	ExtraDyingAttack
	ExtraCold
	ExtraFever
	ExtraHell
	ExtraHeaven
	ExtraFog
	ExtraIllusion
	ExtraGlory
	ExtraDarkCloud
)

var attackExtraTags = newTagTable(map[AttackExtra]string{
	ExtraIncreaseAtk:  "INCREASE_ATK",
	ExtraDoubleAtk:    "DOUBLE_ATK",
	ExtraWideAtk:      "WIDE_ATK",
	ExtraAddAttribute: "ADD_ATTRIBUTE",
	ExtraMagicFree:    "MAGIC_FREE",
	ExtraMagical:      "MAGICAL",
	ExtraPestle:       "PESTLE",
	ExtraMortar:       "MORTAR",
	ExtraToEnemy:      "TO_ENEMY",
	ExtraAbsorbHP:     "ABSORB_HP",
	ExtraDamageToSelf: "DAMAGE_TO_SELF",
	ExtraRevive:       "REVIVE",
	ExtraDyingAttack:  "DYING_ATTACK",
	ExtraCold:         "COLD",
	ExtraFever:        "FEVER",
	ExtraHell:         "HELL",
	ExtraHeaven:       "HEAVEN",
	ExtraFog:          "FOG",
	ExtraIllusion:     "ILLUSION",
	ExtraGlory:        "GLORY",
	ExtraDarkCloud:    "DARK_CLOUD",
})

func ParseAttackExtra(s string) (AttackExtra, bool) { return attackExtraTags.parse(s) }
func (e AttackExtra) String() string { return attackExtraTags.name(e) }
func (e AttackExtra) MarshalText() ([]byte, error) { return []byte(e.String()), nil }
func (e *AttackExtra) UnmarshalText(text []byte) error { return attackExtraTags.unmarshal(e, text, "attack extra") }

// Harm возвращает вред, который несет эффект, или HarmNone.
func (e AttackExtra) Harm() Harm {
	h, _ := ParseHarm(e.String())
	return h
}

// IsModifier - эффекты, которые можно прицепить к оружию вторым и далее куском цепочки.
func (e AttackExtra) IsModifier() bool {
	switch e {
	case ExtraIncreaseAtk, ExtraDoubleAtk, ExtraWideAtk, ExtraAddAttribute:
		return true
	}
	return false
}

// --- ВИД ЗАЩИТЫ ---

type DefenseKind uint8

const (
	DefenseNone DefenseKind = iota
	DefenseDfs
	DefenseCounter
)

var defenseKindTags = newTagTable(map[DefenseKind]string{
	DefenseDfs:     "DFS",
	DefenseCounter: "COUNTER",
})

func ParseDefenseKind(s string) (DefenseKind, bool) { return defenseKindTags.parse(s) }
func (k DefenseKind) String() string { return defenseKindTags.name(k) }
func (k DefenseKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }
func (k *DefenseKind) UnmarshalText(text []byte) error { return defenseKindTags.unmarshal(k, text, "defense kind") }

// --- ДОПОЛНИТЕЛЬНЫЙ ЭФФЕКТ ЗАЩИТЫ ---

type DefenseExtra uint8

const (
	DefExtraNone DefenseExtra = iota
	DefExtraReflectWeapon
	DefExtraReflectMagic
	DefExtraReflectAny
	DefExtraFlickWeapon
	DefExtraFlickMagic
	DefExtraBlockWeapon
	DefExtraBlockMagic
	DefExtraCold
	DefExtraFever
	DefExtraHell
	DefExtraHeaven
	DefExtraFog
	DefExtraIllusion
	DefExtraGlory
	DefExtraDarkCloud
)

var defenseExtraTags = newTagTable(map[DefenseExtra]string{
	DefExtraReflectWeapon: "REFLECT_WEAPON",
	DefExtraReflectMagic:  "REFLECT_MAGIC",
	DefExtraReflectAny:    "REFLECT_ANY",
	DefExtraFlickWeapon:   "FLICK_WEAPON",
	DefExtraFlickMagic:    "FLICK_MAGIC",
	DefExtraBlockWeapon:   "BLOCK_WEAPON",
	DefExtraBlockMagic:    "BLOCK_MAGIC",
	DefExtraCold:          "COLD",
	DefExtraFever:         "FEVER",
	DefExtraHell:          "HELL",
	DefExtraHeaven:        "HEAVEN",
	DefExtraFog:           "FOG",
	DefExtraIllusion:      "ILLUSION",
	DefExtraGlory:         "GLORY",
	DefExtraDarkCloud:     "DARK_CLOUD",
})

func ParseDefenseExtra(s string) (DefenseExtra, bool) { return defenseExtraTags.parse(s) }
func (e DefenseExtra) String() string { return defenseExtraTags.name(e) }
func (e DefenseExtra) MarshalText() ([]byte, error) { return []byte(e.String()), nil }
func (e *DefenseExtra) UnmarshalText(text []byte) error { return defenseExtraTags.unmarshal(e, text, "defense extra") }

func (e DefenseExtra) Harm() Harm {
	h, _ := ParseHarm(e.String())
	return h
}

// IsRedirect - отражение, отбрасывание или блок.
func (e DefenseExtra) IsRedirect() bool {
	return e >= DefExtraReflectWeapon && e <= DefExtraBlockMagic
}

// RedirectApplies проверяет, действует ли перенаправление против атаки с данным первым куском.
func (e DefenseExtra) RedirectApplies(first ItemType) bool {
	switch e {
	case DefExtraReflectAny:
		return true
	case DefExtraReflectWeapon, DefExtraFlickWeapon, DefExtraBlockWeapon:
		return first == ItemTypeWeapon
	case DefExtraReflectMagic, DefExtraFlickMagic, DefExtraBlockMagic:
		return first == ItemTypeMagic
	}
	return false
}

// --- ВРЕД (БОЛЕЗНИ И СТАТУСЫ) ---

// Harm объединяет болезни (упорядоченная цепочка) и независимые статусы.
type Harm uint8

const (
	HarmNone Harm = iota
	HarmCold
	HarmFever
	HarmHell
	HarmHeaven
	HarmFog
	HarmIllusion
	HarmGlory
	HarmDarkCloud
)

var harmTags = newTagTable(map[Harm]string{
	HarmCold:      "COLD",
	HarmFever:     "FEVER",
	HarmHell:      "HELL",
	HarmHeaven:    "HEAVEN",
	HarmFog:       "FOG",
	HarmIllusion:  "ILLUSION",
	HarmGlory:     "GLORY",
	HarmDarkCloud: "DARK_CLOUD",
})

func ParseHarm(s string) (Harm, bool) { return harmTags.parse(s) }
func (h Harm) String() string { return harmTags.name(h) }
func (h Harm) MarshalText() ([]byte, error) { return []byte(h.String()), nil }
func (h *Harm) UnmarshalText(text []byte) error { return harmTags.unmarshal(h, text, "harm") }

// IsDisease - болезнь из цепочки COLD < FEVER < HELL < HEAVEN.
func (h Harm) IsDisease() bool {
	return h >= HarmCold && h <= HarmHeaven
}

// --- ПЛАНЕТЫ (ТИПЫ АССИСТЕНТОВ И ИСХОДЫ MYSTERY) ---

type Planet uint8

const (
	PlanetNone Planet = iota
	PlanetMars
	PlanetMercury
	PlanetJupiter
	PlanetSaturn
	PlanetUranus
	PlanetPluto
	PlanetNeptune
	PlanetVenus
	PlanetEarth
	PlanetMoon
)

// Planets - все десять вариантов в каноническом порядке.
var Planets = []Planet{
	PlanetMars, PlanetMercury, PlanetJupiter, PlanetSaturn, PlanetUranus,
	PlanetPluto, PlanetNeptune, PlanetVenus, PlanetEarth, PlanetMoon,
}

var planetTags = newTagTable(map[Planet]string{
	PlanetMars:    "MARS",
	PlanetMercury: "MERCURY",
	PlanetJupiter: "JUPITER",
	PlanetSaturn:  "SATURN",
	PlanetUranus:  "URANUS",
	PlanetPluto:   "PLUTO",
	PlanetNeptune: "NEPTUNE",
	PlanetVenus:   "VENUS",
	PlanetEarth:   "EARTH",
	PlanetMoon:    "MOON",
})

func ParsePlanet(s string) (Planet, bool) { return planetTags.parse(s) }
func (p Planet) String() string { return planetTags.name(p) }
func (p Planet) MarshalText() ([]byte, error) { return []byte(p.String()), nil }
func (p *Planet) UnmarshalText(text []byte) error { return planetTags.unmarshal(p, text, "planet") }

// --- КОМАНДЫ ---

type Team string

const (
	TeamSingle Team = "SINGLE"
	Team1      Team = "TEAM1"
	Team2      Team = "TEAM2"
	Team3      Team = "TEAM3"
	Team4      Team = "TEAM4"
)

// IsValid проверяет, что команда из допустимого набора.
func (t Team) IsValid() bool {
	switch t {
	case TeamSingle, Team1, Team2, Team3, Team4:
		return true
	}
	return false
}
