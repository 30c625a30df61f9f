package web

// Invoice table with a user filter and sortable headers, fed by the SSE stream.
const indexHTML = `<!DOCTYPE html>
<html lang="ru">
<head>
  <meta charset="utf-8" />
  <title>Exchange invoices</title>
  <link href="https://fonts.googleapis.com/css2?family=Space+Mono:wght@400;700&display=swap" rel="stylesheet">
  <style>
    :root {
      --bg:#ffffff;
      --ink:#111111;
      --ink-mid:#4d4d4d;
      --panel:#f6f6f6;
    }
    * { box-sizing:border-box; }
    body {
      margin:0;
      padding:2rem;
      background:var(--bg);
      color:var(--ink);
      font-family:'Space Mono','JetBrains Mono',monospace;
    }
    h1 { font-size:1.1rem; letter-spacing:.08em; text-transform:uppercase; }
    #filter {
      margin-bottom:1rem;
      padding:.5rem;
      width:300px;
      border:2px solid var(--ink);
      font-family:inherit;
    }
    .status { font-size:.7rem; color:var(--ink-mid); margin-left:1rem; }
    table { border-collapse:collapse; width:100%; }
    th, td { border:1px solid var(--ink); padding:8px; font-size:.75rem; text-align:left; }
    th {
      background:#f0f0f0;
      box-shadow:0 2px 5px rgba(0,0,0,0.1), inset 0 1px 0 rgba(255,255,255,0.6);
      padding:10px;
      cursor:pointer;
      font-weight:bold;
      transition:all 0.2s ease-in-out;
      user-select:none;
    }
    th.active {
      background:#e0e0e0;
      box-shadow:inset 2px 2px 5px rgba(0,0,0,0.2), inset -2px -2px 5px rgba(255,255,255,0.8);
    }
    th.active.asc::after { content:' ▲'; }
    th.active.desc::after { content:' ▼'; }
    .empty { padding:2rem; text-align:center; color:var(--ink-mid); }
  </style>
</head>
<body>
  <h1>Данные из Supabase</h1>
  <input id="filter" type="text" placeholder="Фильтр по пользователю" autocomplete="off" />
  <span id="status" class="status">Connecting…</span>
  <p id="loading">Загрузка...</p>
  <table id="table" hidden>
    <thead>
      <tr>
        <th data-field="id">ID</th>
        <th data-field="date_time">Дата</th>
        <th data-field="user_name">Пользователь</th>
        <th data-field="rub">₽</th>
        <th data-field="total_crypto">Крипта</th>
        <th data-field="paymentMethodName">Тип</th>
        <th data-field="requisites">Реквизиты</th>
        <th data-field="holder">ФИО</th>
        <th data-field="status">Статус</th>
      </tr>
    </thead>
    <tbody id="rows"></tbody>
  </table>
<script>
const statusEl = document.getElementById('status');
const loadingEl = document.getElementById('loading');
const tableEl = document.getElementById('table');
const rowsEl = document.getElementById('rows');
const filterEl = document.getElementById('filter');
const headers = Array.from(document.querySelectorAll('th[data-field]'));

const text = (v) => (v === null || v === undefined) ? '' : String(v);

const formatDate = (v) => {
  if(!v){ return ''; }
  const d = new Date(v);
  return Number.isNaN(d.getTime()) ? text(v) : d.toLocaleString();
};

function cell(value){
  const td = document.createElement('td');
  td.textContent = value;
  return td;
}

function render(snapshot){
  loadingEl.hidden = !snapshot.loading;
  tableEl.hidden = snapshot.loading;
  statusEl.textContent = snapshot.records.length + ' / ' + snapshot.total;

  const key = snapshot.sort && snapshot.sort.key;
  headers.forEach((th) => {
    const active = th.dataset.field === key;
    th.classList.toggle('active', active);
    th.classList.toggle('asc', active && snapshot.sort.direction === 'asc');
    th.classList.toggle('desc', active && snapshot.sort.direction === 'desc');
  });

  if(document.activeElement !== filterEl && filterEl.value !== snapshot.filter){
    filterEl.value = snapshot.filter;
  }

  const frag = document.createDocumentFragment();
  snapshot.records.forEach((item) => {
    const tr = document.createElement('tr');
    tr.dataset.id = item.id;
    tr.append(
      cell(text(item.id)),
      cell(formatDate(item.date_time)),
      cell(text(item.user_name)),
      cell(text(item.rub)),
      cell(text(item.total_crypto) + ' ' + text(item.type_crypto)),
      cell(text(item.paymentMethodName) + ' / ' + text(item.paymentOption)),
      cell(text(item.requisites)),
      cell(text(item.holder)),
      cell(text(item.status))
    );
    frag.appendChild(tr);
  });
  rowsEl.replaceChildren(frag);
}

async function post(url, body){
  try{
    const res = await fetch(url, {
      method:'POST',
      headers:{ 'Content-Type':'application/json' },
      body: body ? JSON.stringify(body) : undefined
    });
    if(res.ok){ render(await res.json()); }
  }catch(err){
    console.error('request failed', err);
  }
}

headers.forEach((th) => {
  th.addEventListener('click', () => post('/api/sort/' + encodeURIComponent(th.dataset.field)));
});
// one filter request at a time; only the newest pending text is sent next
let filterInFlight = false;
let pendingFilter = null;
async function sendFilter(text){
  if(filterInFlight){
    pendingFilter = text;
    return;
  }
  filterInFlight = true;
  try{
    await post('/api/filter', { text: text });
  }finally{
    filterInFlight = false;
  }
  if(pendingFilter !== null){
    const next = pendingFilter;
    pendingFilter = null;
    sendFilter(next);
  }
}
filterEl.addEventListener('input', () => sendFilter(filterEl.value));

function connectSSE(){
  const source = new EventSource('/api/view/stream');
  source.addEventListener('view', (event) => {
    try{
      render(JSON.parse(event.data));
    }catch(err){
      console.error('snapshot parse', err);
    }
  });
  source.addEventListener('error', () => {
    statusEl.textContent = 'Reconnecting…';
    source.close();
    setTimeout(connectSSE, 2000);
  });
}

connectSSE();
</script>
</body>
</html>`
