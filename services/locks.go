package services

import "sync"

// Locks — реестр пер-аккаунтных мьютексов. Все операции, меняющие состояние
// одного аккаунта (покупка, начисление, вывод, реферальная награда),
// сериализуются через его мьютекс; разные аккаунты работают параллельно.
type Locks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLocks() *Locks {
	return &Locks{locks: make(map[string]*sync.Mutex)}
}

// Account возвращает мьютекс аккаунта, создавая его при первом обращении.
func (l *Locks) Account(userID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	return m
}
