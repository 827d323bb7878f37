package catalog

import (
	_ "embed"
	"fmt"
	"math/rand"
	"os"
	"sort"

	"github.com/Igoorx/godfield-flash/internal/domain"
	"github.com/Igoorx/godfield-flash/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

//go:embed items.yaml
var defaultItems []byte

// rawItem - запись каталога в том виде, в каком она лежит в YAML.
type rawItem struct {
	ID           *int   `yaml:"id" validate:"required,min=0"`
	Name         string `yaml:"name" validate:"required"`
	Type         string `yaml:"type" validate:"required"`
	AttackKind   string `yaml:"attackKind"`
	AttackExtra  string `yaml:"attackExtra"`
	DefenseKind  string `yaml:"defenseKind"`
	DefenseExtra string `yaml:"defenseExtra"`
	Attribute    string `yaml:"attribute"`
	Value        int    `yaml:"value" validate:"min=0,max=99"`
	SubValue     int    `yaml:"subValue" validate:"min=0,max=99"`
	HitRate      int    `yaml:"hitRate" validate:"min=0,max=100"`
	Price        int    `yaml:"price" validate:"min=0,max=99"`
	Weight       int    `yaml:"weight" validate:"min=0"`
	Assistant    string `yaml:"assistant"`
}

// illusionKey - ключ таблицы подмен под ILLUSION.
type illusionKey struct {
	Type      domain.ItemType
	Attribute domain.Attribute
}

// weightedPool - набор предметов с накопленными весами для бисекции.
type weightedPool struct {
	items []*domain.Item
	cum   []int
	total int
}

func (p *weightedPool) add(it *domain.Item) {
	if it.Weight <= 0 {
		return
	}
	p.total += it.Weight
	p.items = append(p.items, it)
	p.cum = append(p.cum, p.total)
}

func (p *weightedPool) draw(rng *rand.Rand) *domain.Item {
	if p.total == 0 {
		return nil
	}
	x := rng.Intn(p.total)
	i := sort.SearchInts(p.cum, x+1)
	return p.items[i]
}

// Catalog - неизменяемый после загрузки справочник предметов.
type Catalog struct {
	items     map[int]*domain.Item
	ordered   []*domain.Item
	deal      weightedPool
	assistant map[domain.Planet]*weightedPool
	illusions map[illusionKey][]*domain.Item
}

// Default загружает каталог, вшитый в бинарник.
func Default() (*Catalog, error) {
	return Parse(defaultItems)
}

// Load читает каталог из файла. Пустой путь - вшитый каталог.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse разбирает YAML-список предметов.
func Parse(data []byte) (*Catalog, error) {
	var raw []rawItem
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	validate := validator.New()
	items := make([]*domain.Item, 0, len(raw))
	for i := range raw {
		if err := validate.Struct(&raw[i]); err != nil {
			return nil, fmt.Errorf("catalog entry #%d: %w", i, err)
		}
		it, err := raw[i].toItem()
		if err != nil {
			return nil, fmt.Errorf("catalog entry %d (%s): %w", *raw[i].ID, raw[i].Name, err)
		}
		items = append(items, it)
	}
	return New(items)
}

// New строит каталог из готовых предметов (используется и в тестах).
func New(items []*domain.Item) (*Catalog, error) {
	c := &Catalog{
		items:     make(map[int]*domain.Item, len(items)),
		ordered:   make([]*domain.Item, 0, len(items)),
		assistant: make(map[domain.Planet]*weightedPool),
		illusions: make(map[illusionKey][]*domain.Item),
	}

	for _, it := range items {
		if _, dup := c.items[it.ID]; dup {
			return nil, fmt.Errorf("duplicate item id %d", it.ID)
		}
		c.items[it.ID] = it
		c.ordered = append(c.ordered, it)
	}
	sort.Slice(c.ordered, func(i, j int) bool { return c.ordered[i].ID < c.ordered[j].ID })

	for _, it := range c.ordered {
		if it.Assistant != domain.PlanetNone {
			pool, ok := c.assistant[it.Assistant]
			if !ok {
				pool = &weightedPool{}
				c.assistant[it.Assistant] = pool
			}
			pool.add(it)
			continue
		}
		c.deal.add(it)
	}

	c.buildIllusions()

	logger.Log.WithFields(logrus.Fields{
		"component":  "catalog",
		"items":      len(c.items),
		"dealable":   len(c.deal.items),
		"assistants": len(c.assistant),
	}).Info("Item catalog loaded")
	return c, nil
}

// buildIllusions раскладывает раздаваемые предметы по ключам (тип, атрибут).
// Нейтральный предмет похож на любой атрибут своего типа.
func (c *Catalog) buildIllusions() {
	attrs := []domain.Attribute{
		domain.AttrNone, domain.AttrFire, domain.AttrWater, domain.AttrTree,
		domain.AttrSoil, domain.AttrLight, domain.AttrDark,
	}
	for _, it := range c.deal.items {
		if it.Type == domain.ItemTypeFixed {
			continue
		}
		for _, a := range attrs {
			probe := domain.Item{Type: it.Type, Attribute: a}
			if probe.IsSimilarTo(it) {
				key := illusionKey{Type: it.Type, Attribute: a}
				c.illusions[key] = append(c.illusions[key], it)
			}
		}
	}
}

func (r *rawItem) toItem() (*domain.Item, error) {
	it := &domain.Item{
		ID:       *r.ID,
		Name:     r.Name,
		Value:    r.Value,
		SubValue: r.SubValue,
		HitRate:  r.HitRate,
		Price:    r.Price,
		Weight:   r.Weight,
	}

	var ok bool
	if it.Type, ok = domain.ParseItemType(r.Type); !ok || it.Type == domain.ItemTypeNone {
		return nil, fmt.Errorf("unknown type %q", r.Type)
	}
	if it.AttackKind, ok = domain.ParseAttackKind(r.AttackKind); !ok {
		return nil, fmt.Errorf("unknown attackKind %q", r.AttackKind)
	}
	if it.AttackExtra, ok = domain.ParseAttackExtra(r.AttackExtra); !ok {
		return nil, fmt.Errorf("unknown attackExtra %q", r.AttackExtra)
	}
	if it.DefenseKind, ok = domain.ParseDefenseKind(r.DefenseKind); !ok {
		return nil, fmt.Errorf("unknown defenseKind %q", r.DefenseKind)
	}
	if it.DefenseExtra, ok = domain.ParseDefenseExtra(r.DefenseExtra); !ok {
		return nil, fmt.Errorf("unknown defenseExtra %q", r.DefenseExtra)
	}
	if it.Attribute, ok = domain.ParseAttribute(r.Attribute); !ok {
		return nil, fmt.Errorf("unknown attribute %q", r.Attribute)
	}
	if it.Assistant, ok = domain.ParsePlanet(r.Assistant); !ok {
		return nil, fmt.Errorf("unknown assistant %q", r.Assistant)
	}
	return it, nil
}

// --- ЗАПРОСЫ ---

// Get возвращает предмет по ID или nil.
func (c *Catalog) Get(id int) *domain.Item {
	return c.items[id]
}

// MustGet - для известных движку ID; отсутствие означает битый каталог.
func (c *Catalog) MustGet(id int) *domain.Item {
	it, ok := c.items[id]
	if !ok {
		panic(fmt.Sprintf("catalog: well-known item %d is missing", id))
	}
	return it
}

func (c *Catalog) Len() int {
	return len(c.items)
}

// All - все предметы по возрастанию ID.
func (c *Catalog) All() []*domain.Item {
	return c.ordered
}

// RandomItemOf - равновероятный выбор среди раздаваемых предметов указанных типов.
func (c *Catalog) RandomItemOf(rng *rand.Rand, types ...domain.ItemType) *domain.Item {
	var candidates []*domain.Item
	for _, it := range c.deal.items {
		for _, t := range types {
			if it.Type == t {
				candidates = append(candidates, it)
				break
			}
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	return candidates[rng.Intn(len(candidates))]
}

// ProbRandomItem - взвешенный выбор. Предметы с весом 0 не выпадают.
func (c *Catalog) ProbRandomItem(rng *rand.Rand) *domain.Item {
	return c.deal.draw(rng)
}

func (c *Catalog) ProbRandomItems(rng *rand.Rand, n int) []*domain.Item {
	out := make([]*domain.Item, 0, max(0, n))
	for i := 0; i < n; i++ {
		if it := c.deal.draw(rng); it != nil {
			out = append(out, it)
		}
	}
	return out
}

// ProbRandomAssistantItem - взвешенный выбор из пула ассистента планеты.
func (c *Catalog) ProbRandomAssistantItem(rng *rand.Rand, planet domain.Planet) *domain.Item {
	pool, ok := c.assistant[planet]
	if !ok {
		return nil
	}
	return pool.draw(rng)
}

// IllusionSubstituteFor - случайная похожая подмена для предмета или nil.
func (c *Catalog) IllusionSubstituteFor(rng *rand.Rand, item *domain.Item) *domain.Item {
	if item.Type == domain.ItemTypeFixed {
		return nil
	}
	candidates := c.illusions[illusionKey{Type: item.Type, Attribute: item.Attribute}]
	var pool []*domain.Item
	for _, cand := range candidates {
		if item.IsReplaceableBy(cand) {
			pool = append(pool, cand)
		}
	}
	if len(pool) == 0 {
		return nil
	}
	return pool[rng.Intn(len(pool))]
}
