package domain

// defendedBy - направленная таблица стихий: какой атрибут защиты гасит атаку.
var defendedBy = map[Attribute][]Attribute{
	AttrFire:  {AttrWater, AttrLight},
	AttrWater: {AttrFire, AttrLight},
	AttrTree:  {AttrSoil, AttrLight},
	AttrSoil:  {AttrTree, AttrLight},
	AttrLight: {AttrDark},
}

// CanBeDefendedBy проверяет, можно ли защититься от атаки с атрибутом attack
// цепочкой защиты со сложенным атрибутом defense.
// Нейтральная атака и DARK защищаются чем угодно.
// Стихийной атаке нужен атрибут из таблицы.
func CanBeDefendedBy(attack, defense Attribute) bool {
	if attack == AttrNone || attack == AttrUndetermined || attack == AttrDark {
		return true
	}
	if defense == AttrNone || defense == AttrUndetermined {
		return false
	}
	for _, a := range defendedBy[attack] {
		if a == defense {
			return true
		}
	}
	return false
}

// DefendsAgainst - отдельный предмет с атрибутом item подходит против атаки attack.
// В отличие от CanBeDefendedBy, нестихийная атака принимает любой предмет.
func DefendsAgainst(attack, item Attribute) bool {
	if !attack.IsElemental() {
		return true
	}
	return CanBeDefendedBy(attack, item)
}

// FoldAttribute складывает атрибут цепочки с атрибутом очередного куска.
// LIGHT уступает любой стихии, разные стихии дают смешанный "".
func FoldAttribute(acc, next Attribute) Attribute {
	if acc == AttrUndetermined || acc == AttrLight {
		return next
	}
	if acc != next && next != AttrLight {
		return AttrNone
	}
	return acc
}
