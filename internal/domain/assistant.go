package domain

// Assistant - призванный помощник игрока со щитом HP.
type Assistant struct {
	Type Planet `json:"type"`
	HP   int    `json:"hp"`
}

func NewAssistant(t Planet) *Assistant {
	return &Assistant{Type: t, HP: AssistantHP}
}

// AbsorbDamage принимает урон на щит и возвращает то, что прошло насквозь.
func (a *Assistant) AbsorbDamage(damage int) int {
	a.HP -= damage
	if a.HP >= 0 {
		return 0
	}
	rest := -a.HP
	a.HP = 0
	return rest
}
