package kanachu

// Fixture pages modelled on the operator's mobile timetable markup.

const tablePageWeekday = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>時刻表</title></head>
<body>
<table class="header"><tr><td>美住町</td></tr></table>
<table class="route"><tr><td>茅ヶ崎駅行</td></tr></table>
<table class="timetable">
  <tr><th>時</th><th>分</th></tr>
  <tr><td>7</td><td><ul><li>05</li><li>15*</li><li>30</li></ul></td></tr>
</table>
</body></html>`

const tablePageSaturday = `<html><body>
<table></table><table></table>
<table>
  <tr><th>時</th><th>分</th></tr>
  <tr><td>6時</td><td>40 ◎55</td></tr>
  <tr><td>7時</td><td>10 始発 25</td></tr>
</table>
</body></html>`

const tablePageHoliday = `<html><body>
<table></table><table></table>
<table>
  <tr><td>9</td><td><ul><li>00</li></ul></td></tr>
</table>
</body></html>`

const tablePageTooFewTables = `<html><body>
<table><tr><td>7</td><td>05</td></tr></table>
<table></table>
</body></html>`

const tabPage = `<html><body>
<div id="time_table_tab_1">
  <dl class="sp_tblTime"><dt>7</dt><dd><span>05</span><span>15*</span><span>30</span></dd></dl>
  <dl class="sp_tblTime"><dt>8</dt><dd><span>00</span></dd></dl>
</div>
<div id="time_table_tab_2">
  <dl class="sp_tblTime"><dt>7</dt><dd><span>20</span><span>-</span></dd></dl>
</div>
<div id="time_table_tab_3">
  <dl class="sp_tblTime"><dt>10</dt><dd><span>△45</span></dd></dl>
</div>
</body></html>`

const tabPageMissingHoliday = `<html><body>
<div id="time_table_tab_1"><dl class="sp_tblTime"><dt>7</dt><dd><span>05</span></dd></dl></div>
<div id="time_table_tab_2"><dl class="sp_tblTime"><dt>7</dt><dd><span>20</span></dd></dl></div>
</body></html>`
