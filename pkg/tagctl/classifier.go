package tagctl

import (
	"fmt"
	"strings"
)

// Verdict результат классификации одной строки.
type Verdict struct {
	Terminal bool       // Найден завершающий маркер
	Matched  []Sentinel // Все маркеры, найденные в строке, в порядке объявления
}

// Classifier сопоставляет строки ответа с таблицей маркеров одной команды.
// Не потокобезопасен: принадлежит одной сессии.
type Classifier struct {
	spec    CommandSpec
	seen    map[string]bool
	markers []Sentinel
}

// NewClassifier создаёт классификатор для спецификации команды.
func NewClassifier(spec CommandSpec) *Classifier {
	return &Classifier{
		spec: spec,
		seen: make(map[string]bool),
	}
}

// Classify проверяет строку на маркеры. Пустые строки не сопоставляются.
// Информационный маркер запоминается один раз за сессию.
func (c *Classifier) Classify(line string) Verdict {
	var v Verdict
	if line == "" {
		return v
	}
	for _, st := range c.spec.Sentinels {
		if !strings.Contains(line, st.Substring) {
			continue
		}
		v.Matched = append(v.Matched, st)
		if st.Terminal {
			v.Terminal = true
			break
		}
		if !c.seen[st.Substring] {
			c.seen[st.Substring] = true
			c.markers = append(c.markers, st)
		}
	}
	return v
}

// Markers возвращает метки информационных маркеров в порядке появления.
func (c *Classifier) Markers() []string {
	labels := make([]string, 0, len(c.markers))
	for _, m := range c.markers {
		labels = append(labels, m.Label)
	}
	return labels
}

// Success итог при найденном завершающем маркере.
func (c *Classifier) Success() Outcome {
	return Outcome{Kind: OutcomeSuccess, Markers: c.Markers()}
}

// Expired итог при истечении дедлайна: PartialSuccess, если были
// информационные маркеры, иначе Timeout.
func (c *Classifier) Expired() Outcome {
	if len(c.markers) == 0 {
		return Outcome{Kind: OutcomeTimeout}
	}
	var missing string
	if st, ok := c.spec.Terminal(); ok {
		missing = st.Substring
	}
	markers := c.Markers()
	return Outcome{
		Kind:    OutcomePartialSuccess,
		Reason:  fmt.Sprintf("%s, %s missing", strings.Join(markers, ", "), c.spec.MissingLabel),
		Markers: markers,
		Missing: missing,
	}
}
