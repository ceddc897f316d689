package ai

import (
	"slices"
	"testing"

	"github.com/udisondev/jabs/internal/data"
	"github.com/udisondev/jabs/internal/model"
)

// allyScene: user (1) and a second party member (3) near an enemy (2).
type allyScene struct {
	w      *fakeWorld
	rnd    *fakeRand
	user   *model.Battler
	friend *model.Battler
	foe    *model.Battler
}

func newAllyScene() *allyScene {
	w := newFakeWorld()
	return &allyScene{
		w:      w,
		rnd:    &fakeRand{},
		user:   w.actor(1, model.NewPoint(0, 0)),
		friend: w.actor(3, model.NewPoint(1, 0)),
		foe:    w.enemy(2, 5, model.NewPoint(2, 0)),
	}
}

func (s *allyScene) strategy(mode model.AllyMode) *AllyAI {
	return NewAllyAI(mode, nil, testConfig(), s.w.deps(s.rnd))
}

func TestComboChance(t *testing.T) {
	tests := []struct {
		mode model.AllyMode
		want float64
	}{
		{model.ModeDoNothing, 0},
		{model.ModeBasicAttack, 0.3},
		{model.ModeVariety, 0.2},
		{model.ModeFullForce, 0.5},
		{model.ModeSupport, 0.1},
	}
	for _, tt := range tests {
		if got := ComboChance(tt.mode); got != tt.want {
			t.Errorf("ComboChance(%v) = %v, want %v", tt.mode, got, tt.want)
		}
	}
}

func TestAllyAI_ComboFastPath(t *testing.T) {
	tests := []struct {
		name      string
		mode      model.AllyMode
		roll      float64
		wantSkill data.SkillID
		wantCombo bool
	}{
		{"full force roll succeeds", model.ModeFullForce, 0.4, 12, true},
		{"full force roll fails", model.ModeFullForce, 0.6, 11, false},
		{"basic attack roll succeeds", model.ModeBasicAttack, 0.25, 12, true},
		{"do nothing never combos", model.ModeDoNothing, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newAllyScene()
			first := s.w.attack(10, 20)
			first.ComboNext = 12
			s.w.attack(11, 50)
			s.w.attack(12, 5)
			s.user.SetLastSkill(10)
			s.rnd.floats = []float64{tt.roll}

			d := s.strategy(tt.mode).DecideAction(s.user, s.foe, []data.SkillID{10, 11})
			if d.SkillID != tt.wantSkill {
				t.Errorf("SkillID = %d, want %d", d.SkillID, tt.wantSkill)
			}
			if d.Combo != tt.wantCombo {
				t.Errorf("Combo = %v, want %v", d.Combo, tt.wantCombo)
			}
		})
	}
}

func TestAllyAI_DoNothing(t *testing.T) {
	s := newAllyScene()
	s.w.attack(10, 20)

	d := s.strategy(model.ModeDoNothing).DecideAction(s.user, s.foe, []data.SkillID{10})
	if !d.IsNone() {
		t.Errorf("SkillID = %d, want none", d.SkillID)
	}
	if d.Wait != testConfig().DoNothingWait {
		t.Errorf("Wait = %d, want %d", d.Wait, testConfig().DoNothingWait)
	}
}

func TestAllyAI_FullForceWithoutMemoryPicksStrongest(t *testing.T) {
	s := newAllyScene()
	s.w.attack(10, 30)
	s.w.attack(11, 90)
	s.w.attack(12, 60)
	ai := s.strategy(model.ModeFullForce)

	for i := range 20 {
		s.rnd.ints = []int{i % 3, (i + 1) % 2}
		d := ai.DecideAction(s.user, s.foe, []data.SkillID{10, 11, 12})
		if d.SkillID != 11 {
			t.Fatalf("round %d: SkillID = %d, want strongest 11", i, d.SkillID)
		}
		if d.TargetID != s.foe.ID() {
			t.Fatalf("round %d: TargetID = %d, want %d", i, d.TargetID, s.foe.ID())
		}
	}
}

func TestAllyAI_FullForceWithMemory(t *testing.T) {
	tests := []struct {
		name      string
		effective []data.SkillID
		ints      []int
		want      data.SkillID
	}{
		{"one effective equal to strongest", []data.SkillID{11}, []int{1}, 11},
		{"one effective, flip keeps strongest", []data.SkillID{10}, []int{0}, 11},
		{"one effective, flip keeps remembered", []data.SkillID{10}, []int{1}, 10},
		{"two effective ignore strongest", []data.SkillID{10, 12}, []int{1}, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newAllyScene()
			s.w.attack(10, 30)
			s.w.attack(11, 90)
			s.w.attack(12, 60)
			ai := s.strategy(model.ModeFullForce)
			for _, id := range tt.effective {
				ai.Memory.Apply(MemoryRecord{EnemyID: 5, SkillID: id, Effectiveness: 150})
			}
			s.rnd.ints = tt.ints

			d := ai.DecideAction(s.user, s.foe, []data.SkillID{10, 11, 12})
			if d.SkillID != tt.want {
				t.Errorf("SkillID = %d, want %d", d.SkillID, tt.want)
			}
		})
	}
}

func TestAllyAI_BasicAttack(t *testing.T) {
	tests := []struct {
		name      string
		main, off data.WeaponID
		roll      float64
		want      data.SkillID
	}{
		{"main hand on low roll", 1, 2, 0.5, 20},
		{"off hand on high roll", 1, 2, 0.9, 21},
		{"main hand only", 1, 0, 0.9, 20},
		{"off hand only", 0, 2, 0.1, 21},
		{"no weapons", 0, 0, 0.1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newAllyScene()
			s.w.attack(20, 10)
			s.w.attack(21, 8)
			s.w.tables.PutWeapon(&data.Weapon{ID: 1, Name: "sword", BasicAttack: 20})
			s.w.tables.PutWeapon(&data.Weapon{ID: 2, Name: "dagger", BasicAttack: 21})
			s.user.SetEquipment(data.Equipment{MainHand: tt.main, OffHand: tt.off})
			s.rnd.floats = []float64{tt.roll}

			d := s.strategy(model.ModeBasicAttack).DecideAction(s.user, s.foe, nil)
			if d.SkillID != tt.want {
				t.Errorf("SkillID = %d, want %d", d.SkillID, tt.want)
			}
		})
	}
}

func TestAllyAI_Variety(t *testing.T) {
	tests := []struct {
		name      string
		effective []data.SkillID
		ints      []int
		want      data.SkillID
	}{
		{"no memory picks any", nil, []int{2}, 12},
		{"one effective kept on lost flip", []data.SkillID{11}, []int{1}, 11},
		{"one effective swapped on won flip", []data.SkillID{11}, []int{0, 0}, 10},
		{"several effective", []data.SkillID{10, 12}, []int{1}, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newAllyScene()
			s.w.attack(10, 30)
			s.w.attack(11, 90)
			s.w.attack(12, 60)
			ai := s.strategy(model.ModeVariety)
			for _, id := range tt.effective {
				ai.Memory.Apply(MemoryRecord{EnemyID: 5, SkillID: id, Effectiveness: 100})
			}
			s.rnd.ints = tt.ints

			d := ai.DecideAction(s.user, s.foe, []data.SkillID{10, 11, 12})
			if d.SkillID != tt.want {
				t.Errorf("SkillID = %d, want %d", d.SkillID, tt.want)
			}
		})
	}
}

func TestAllyAI_VarietyMaySupportHurtAlly(t *testing.T) {
	s := newAllyScene()
	s.w.attack(10, 30)
	s.w.heal(30, data.ScopeAlly, 50)
	s.friend.SetHP(30)
	ai := s.strategy(model.ModeVariety)

	s.rnd.ints = []int{0}
	d := ai.DecideAction(s.user, s.foe, []data.SkillID{10, 30})
	if d.SkillID != 30 || d.TargetID != s.friend.ID() {
		t.Errorf("won flip: decision = %+v, want heal 30 on %d", d, s.friend.ID())
	}

	s.rnd.ints = []int{1, 0}
	d = ai.DecideAction(s.user, s.foe, []data.SkillID{10, 30})
	if d.SkillID != 10 {
		t.Errorf("lost flip: SkillID = %d, want 10", d.SkillID)
	}
}

func TestAllyAI_SupportCleanseFirst(t *testing.T) {
	s := newAllyScene()
	s.w.tables.PutState(&data.State{ID: 7, Name: "poison", Negative: true})
	s.w.tables.PutSkill(&data.Skill{ID: 40, Scope: data.ScopeAlly, RemoveStates: []data.StateChance{{StateID: 7, Rate: 50}}})
	s.w.tables.PutSkill(&data.Skill{ID: 41, Scope: data.ScopeAlly, RemoveStates: []data.StateChance{{StateID: 7, Rate: 90}}})
	s.w.heal(30, data.ScopeAlly, 50)
	s.user.SetHP(30)
	s.friend.AddState(7, 100)

	d := s.strategy(model.ModeSupport).DecideAction(s.user, s.foe, []data.SkillID{30, 40, 41})
	if d.SkillID != 41 || d.TargetID != s.friend.ID() {
		t.Errorf("decision = %+v, want cleanse 41 on %d", d, s.friend.ID())
	}
}

func TestAllyAI_SupportHeal(t *testing.T) {
	tests := []struct {
		name       string
		userHP     int32
		friendHP   int32
		heals      map[data.SkillID]data.Scope
		wantSkill  data.SkillID
		wantTarget model.BattlerID
	}{
		{
			name:     "closest without exceeding",
			userHP:   100,
			friendHP: 40,
			heals: map[data.SkillID]data.Scope{
				30: data.ScopeAlly, 31: data.ScopeAlly, 32: data.ScopeAlly,
			},
			wantSkill:  30,
			wantTarget: 3,
		},
		{
			name:     "two hurt prefer multi-target",
			userHP:   30,
			friendHP: 40,
			heals: map[data.SkillID]data.Scope{
				30: data.ScopeAlly, 33: data.ScopeAllAllies,
			},
			wantSkill:  33,
			wantTarget: 1,
		},
		{
			name:     "two hurt without multi-target",
			userHP:   30,
			friendHP: 40,
			heals: map[data.SkillID]data.Scope{
				30: data.ScopeAlly, 32: data.ScopeAlly,
			},
			wantSkill:  30,
			wantTarget: 1,
		},
		{
			name:     "self heal only for user",
			userHP:   100,
			friendHP: 40,
			heals: map[data.SkillID]data.Scope{
				34: data.ScopeSelf, 32: data.ScopeAlly,
			},
			wantSkill:  32,
			wantTarget: 3,
		},
	}
	amounts := map[data.SkillID]float64{30: 50, 31: 80, 32: 20, 33: 40, 34: 60}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newAllyScene()
			var available []data.SkillID
			for id, scope := range tt.heals {
				s.w.heal(id, scope, amounts[id])
				available = append(available, id)
			}
			slices.Sort(available)
			s.user.SetHP(tt.userHP)
			s.friend.SetHP(tt.friendHP)

			d := s.strategy(model.ModeSupport).DecideAction(s.user, s.foe, available)
			if d.SkillID != tt.wantSkill || d.TargetID != tt.wantTarget {
				t.Errorf("decision = %+v, want skill %d on %d", d, tt.wantSkill, tt.wantTarget)
			}
		})
	}
}

func TestAllyAI_SupportOverheal(t *testing.T) {
	s := newAllyScene()
	s.w.heal(30, data.ScopeAlly, 50)
	s.w.heal(31, data.ScopeAlly, 80)
	s.friend.SetHP(55)

	d := s.strategy(model.ModeSupport).DecideAction(s.user, s.foe, []data.SkillID{31, 30})
	if d.SkillID != 30 {
		t.Errorf("SkillID = %d, want smallest overheal 30", d.SkillID)
	}
}

func TestAllyAI_SupportBuff(t *testing.T) {
	s := newAllyScene()
	s.w.tables.PutState(&data.State{ID: 8, Name: "haste", DurationTicks: 600})
	s.w.tables.PutSkill(&data.Skill{ID: 50, Scope: data.ScopeAlly, AddStates: []data.StateChance{{StateID: 8, Rate: 100}}})
	ai := s.strategy(model.ModeSupport)

	d := ai.DecideAction(s.user, s.foe, []data.SkillID{50})
	if d.SkillID != 50 || d.TargetID != s.user.ID() {
		t.Fatalf("decision = %+v, want buff on user", d)
	}

	s.user.AddState(8, 600)
	d = ai.DecideAction(s.user, s.foe, []data.SkillID{50})
	if d.SkillID != 50 || d.TargetID != s.friend.ID() {
		t.Fatalf("decision = %+v, want buff on friend", d)
	}

	s.friend.AddState(8, 600)
	d = ai.DecideAction(s.user, s.foe, []data.SkillID{50})
	if !d.IsNone() {
		t.Fatalf("decision = %+v, want none while buffs last", d)
	}

	s.friend.AddState(8, 100)
	d = ai.DecideAction(s.user, s.foe, []data.SkillID{50})
	if d.SkillID != 50 || d.TargetID != s.friend.ID() {
		t.Errorf("decision = %+v, want refresh on friend", d)
	}
}

func TestAllyAI_SupportFallsBackToDoNothing(t *testing.T) {
	s := newAllyScene()
	s.w.attack(10, 30)
	s.w.heal(30, data.ScopeAlly, 50)

	d := s.strategy(model.ModeSupport).DecideAction(s.user, s.foe, []data.SkillID{10, 30})
	if !d.IsNone() || d.Wait == 0 {
		t.Errorf("decision = %+v, want do-nothing wait", d)
	}
}

func TestAllyAI_Remember(t *testing.T) {
	s := newAllyScene()
	ai := s.strategy(model.ModeVariety)

	ai.Remember(10, TargetOutcome{Target: s.foe, Hit: true, ElementRate: 2})
	if r, _ := ai.Memory.Lookup(5, 10); r.Effectiveness != 200 {
		t.Errorf("Effectiveness = %v, want 200", r.Effectiveness)
	}

	ai.Remember(10, TargetOutcome{Target: s.foe, Hit: false, ElementRate: 2})
	r, _ := ai.Memory.Lookup(5, 10)
	if r.Effectiveness != 0 || r.WasEffective() {
		t.Errorf("after miss record = %+v, want effectiveness 0", r)
	}
	if ai.Memory.Len() != 1 {
		t.Errorf("Len() = %d, want 1", ai.Memory.Len())
	}

	ai.Remember(30, TargetOutcome{Target: s.friend, Hit: true, ElementRate: 1})
	ai.Remember(31, TargetOutcome{Hit: true, ElementRate: 1})
	if ai.Memory.Len() != 1 {
		t.Errorf("Len() after non-enemy targets = %d, want 1", ai.Memory.Len())
	}
}

func TestBattleMemory(t *testing.T) {
	m := NewBattleMemory(
		MemoryRecord{EnemyID: 5, SkillID: 10, Effectiveness: 100},
		MemoryRecord{EnemyID: 5, SkillID: 11, Effectiveness: 99},
		MemoryRecord{EnemyID: 6, SkillID: 10, Effectiveness: 50},
	)
	if m.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", m.Len())
	}

	got := m.EffectiveAmong(5, []data.SkillID{11, 10, 12})
	if !slices.Equal(got, []data.SkillID{10}) {
		t.Errorf("EffectiveAmong(5) = %v, want [10]", got)
	}

	m.Apply(MemoryRecord{EnemyID: 5, SkillID: 10, Effectiveness: 0})
	m.Apply(MemoryRecord{EnemyID: 5, SkillID: 11, Effectiveness: 120})
	if m.Len() != 3 {
		t.Errorf("Len() after upsert = %d, want 3", m.Len())
	}
	got = m.EffectiveAmong(5, []data.SkillID{10, 11})
	if !slices.Equal(got, []data.SkillID{11}) {
		t.Errorf("EffectiveAmong(5) after upsert = %v, want [11]", got)
	}

	recs := m.Records()
	recs[0].Effectiveness = 999
	if r, _ := m.Lookup(5, 10); r.Effectiveness != 0 {
		t.Error("Records() exposes internal storage")
	}
	if _, ok := m.Lookup(7, 10); ok {
		t.Error("Lookup() found unknown pair")
	}
}
